package auth

import (
	"regexp"
	"stickynotes/internal/database/dto"
	"stickynotes/internal/forms"
	"strings"
	"unicode/utf8"
)

const passwordMinLength = 8

const (
	MsgUsernameTaken    = "A user with that username already exists."
	MsgUsernameInvalid  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgPasswordMismatch = "The two password fields didn't match."
	MsgPasswordShort    = "This password is too short. It must contain at least 8 characters."
	MsgPasswordNumeric  = "This password is entirely numeric."
	MsgPasswordSimilar  = "The password is too similar to the username."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var signupMessages = map[string]string{
	"username": MsgUsernameInvalid,
	"eqfield":  MsgPasswordMismatch,
}

func init() {
	forms.RegisterRule("username", usernamePattern.MatchString)
}

// cleanSignup trims the text fields and collects every field error. The
// username uniqueness check needs the store and is done by the caller.
func cleanSignup(form dto.SignupForm) (dto.SignupForm, *forms.ValidationError) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	v := forms.Check(form, signupMessages)
	if !v.Has("password1") && !v.Has("password2") {
		validatePassword(v, "password2", form.Username, form.Password2)
	}
	return form, v
}

func validatePassword(v *forms.ValidationError, field, username, password string) {
	if utf8.RuneCountInString(password) < passwordMinLength {
		v.Add(field, MsgPasswordShort)
	}
	if isDigits(password) {
		v.Add(field, MsgPasswordNumeric)
	}
	if username != "" && strings.EqualFold(password, username) {
		v.Add(field, MsgPasswordSimilar)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
