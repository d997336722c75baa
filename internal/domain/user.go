// File: internal/domain/user.go
package domain

import "time"

// AccountType selects which identifier a login form carries.
type AccountType string

const (
	AccountTypeEmail AccountType = "email"
	AccountTypePhone AccountType = "phone"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns a copy safe to hand to clients (no password hash).
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Account returns the identifier of the given type.
func (u *User) Account(t AccountType) string {
	switch t {
	case AccountTypeEmail:
		return u.Email
	case AccountTypePhone:
		return u.Phone
	}
	return ""
}
