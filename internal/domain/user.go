package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	PasswordHash null.String `json:"-"` // null for OAuth-created users
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	Provider     string      `json:"provider"`
	CreatedAt    time.Time   `json:"created_at"`
}

type RegisterUserDTO struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=6,max=100"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type LoginUserDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExternalIdentity is what an OAuth provider tells us about the logged-in
// account. Email is the lookup key for just-in-time user creation.
type ExternalIdentity struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Provider  string
}
