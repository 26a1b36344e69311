package notes

import (
	"stickynotes/internal/database/dto"
	"stickynotes/internal/forms"
	"strings"
)

// Clean trims the form and checks it. It returns the cleaned form together
// with a *forms.ValidationError when any field is rejected.
func Clean(form dto.NoteForm) (dto.NoteForm, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Content = strings.TrimSpace(form.Content)
	return form, forms.Check(form, nil).Err()
}
