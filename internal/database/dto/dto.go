package dto

// LoginCredentials is posted by the login form and the token endpoint.
type LoginCredentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SignupForm mirrors the registration form: the password is typed twice.
type SignupForm struct {
	Username  string `json:"username" form:"username" validate:"required,max=150,username"`
	Email     string `json:"email" form:"email" validate:"required,max=254,email"`
	Password1 string `json:"password1" form:"password1" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password1"`
}

// NoteForm is the editable part of a note.
type NoteForm struct {
	Title   string `json:"title" form:"title" validate:"required,max=50"`
	Content string `json:"content" form:"content" validate:"required"`
}
