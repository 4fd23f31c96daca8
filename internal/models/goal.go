package models

import "time"

const (
	GoalPending    = "pending"
	GoalInProgress = "in_progress"
	GoalCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Goal struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Status         string    `json:"status" db:"status"`
	Priority       string    `json:"priority" db:"priority"`
	DueDate        string    `json:"due_date" db:"due_date"`
	Assignee       string    `json:"assignee" db:"assignee"`
	Tags           []string  `json:"tags" db:"-"`
	Progress       int       `json:"progress" db:"progress"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type CreateGoalInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"due_date"`
	Assignee    string   `json:"assignee"`
	Tags        []string `json:"tags"`
}

// GoalWithReport is a goal with its progress report attached when one exists.
// The report field is absent for goals without a matching report.
type GoalWithReport struct {
	Goal
	ProgressReport *ProgressReport `json:"progress_report,omitempty"`
}
