package models

import "time"

type Organization struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	KeyPrefix   string    `json:"-" db:"key_prefix"`
	KeyHash     string    `json:"-" db:"key_hash"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	GitHubURL   string    `json:"github_url,omitempty" db:"github_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateOrganizationInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type OrganizationMember struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	GitHubID       string    `json:"github_id" db:"github_id"`
	Role           Role      `json:"role" db:"role"`
	Name           string    `json:"name" db:"name"`
	Image          string    `json:"image" db:"image"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Membership is the output of organization resolution: the single organization
// a user belongs to plus their effective role within it.
type Membership struct {
	Organization *Organization `json:"organization"`
	Role         Role          `json:"role"`
}
