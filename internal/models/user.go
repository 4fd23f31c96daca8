package models

import "time"

type User struct {
	GitHubID  string    `json:"github_id" db:"github_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Image     string    `json:"image" db:"image"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProviderProfile is the identity assertion handed over after the OAuth
// provider has authenticated the user.
type ProviderProfile struct {
	GitHubID string `json:"github_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}
