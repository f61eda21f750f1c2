package repository

import (
	"strings"

	"thermolog/internal/models"
)

// ConfigUserRepository serves the single API user configured under `auth`.
type ConfigUserRepository struct {
	user *models.User
}

// NewConfigUserRepository returns a repository with no users when username
// or hash is empty.
func NewConfigUserRepository(username, passwordHash string) *ConfigUserRepository {
	username = strings.TrimSpace(username)
	passwordHash = strings.TrimSpace(passwordHash)
	if username == "" || passwordHash == "" {
		return &ConfigUserRepository{}
	}
	return &ConfigUserRepository{user: &models.User{
		ID:           1,
		Username:     username,
		PasswordHash: passwordHash,
	}}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*ConfigUserRepository)(nil)

// GetByUsername returns (nil, nil) if not found.
func (r *ConfigUserRepository) GetByUsername(username string) (*models.User, error) {
	if r.user == nil || r.user.Username != username {
		return nil, nil
	}
	u := *r.user
	return &u, nil
}
