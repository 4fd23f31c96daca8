package models

import "time"

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a join request keyed by an organization secret key.
// pending is the only state with outgoing transitions; approved and rejected
// are terminal.
type Application struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	GitHubID       string    `json:"github_id" db:"github_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Image          string    `json:"image" db:"image"`
	Status         string    `json:"status" db:"status"`
	Role           Role      `json:"role,omitempty" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type ApplyRequest struct {
	Key      string `json:"key"`
	GitHubID string `json:"github_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

type ApplicationDecision struct {
	Status string `json:"status"`
	Role   Role   `json:"role,omitempty"`
}

// ValidTransition reports whether an application in state from may move to
// state to.
func ValidTransition(from, to string) bool {
	if from != ApplicationPending {
		return false
	}
	return to == ApplicationApproved || to == ApplicationRejected
}
