package models

// User is the single API account configured under `auth`.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // bcrypt, never serialized
}
