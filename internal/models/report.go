package models

import "time"

// ProgressReport is an AI assessment of a goal's actual vs. expected
// completion. At most one report exists per goal; regeneration replaces it.
type ProgressReport struct {
	GoalID            string    `json:"goal_id" db:"goal_id"`
	ExpectedProgress  string    `json:"expected_progress" db:"expected_progress"`
	ConfirmedProgress string    `json:"confirmed_progress" db:"confirmed_progress"`
	Issues            []string  `json:"issues" db:"-"`
	Suggestions       []string  `json:"suggestions" db:"-"`
	Todos             []string  `json:"todos,omitempty" db:"-"`
	Risks             []string  `json:"risks,omitempty" db:"-"`
	GeneratedAt       time.Time `json:"generated_at" db:"generated_at"`
}

// DevReport is the organization-scoped daily development report. Fully
// replaced on each regeneration; one row per org per day.
type DevReport struct {
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	ReportDate     string    `json:"report_date" db:"report_date"`
	Summary        string    `json:"summary" db:"summary"`
	Changes        []string  `json:"changes" db:"-"`
	Issues         []string  `json:"issues" db:"-"`
	Suggestions    []string  `json:"suggestions" db:"-"`
	GeneratedAt    time.Time `json:"generated_at" db:"generated_at"`
}

type Documentation struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Details  []string `json:"details"`
	Impact   string   `json:"impact"`
	Audience string   `json:"audience,omitempty"`
}

type CodebaseAnswer struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	RelevantAreas []string `json:"relevant_areas,omitempty"`
}
