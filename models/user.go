package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account. Password holds the bcrypt hash and is never serialised.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is the only user shape the API returns.
type PublicUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public strips everything but email and name.
func (u *User) Public() PublicUser {
	return PublicUser{Email: u.Email, Name: u.Name}
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// MatchPassword compares password against the stored hash.
func (u *User) MatchPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
