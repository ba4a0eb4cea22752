package models

// User is a registered account. Password always holds the bcrypt digest.
type User struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Dev       string
}

// UserView is the session identity returned to clients; it never carries
// the password digest.
type UserView struct {
	Email     string `json:"aws_email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Dev       string `json:"dev"`
}

// View strips the digest from u.
func (u *User) View() *UserView {
	return &UserView{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Dev:       u.Dev,
	}
}

// RegisterInput is the validated body of a registration request.
type RegisterInput struct {
	Email     string `json:"aws_email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Dev       string `json:"dev"`
}

// LoginInput is the validated body of a login request.
type LoginInput struct {
	Email    string `json:"aws_email"`
	Password string `json:"password"`
}
