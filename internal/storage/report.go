package storage

import (
	"context"
	"database/sql"

	"intersect-backend/internal/models"
)

// UpsertProgressReport keeps at most one report per goal; regeneration
// replaces the previous one.
func (s *Storage) UpsertProgressReport(ctx context.Context, report *models.ProgressReport) error {
	issues, err := encodeStringArray(report.Issues)
	if err != nil {
		return err
	}
	suggestions, err := encodeStringArray(report.Suggestions)
	if err != nil {
		return err
	}
	todos, err := encodeStringArray(report.Todos)
	if err != nil {
		return err
	}
	risks, err := encodeStringArray(report.Risks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progress_reports (goal_id, expected_progress, confirmed_progress, issues, suggestions, todos, risks, generated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7::jsonb, NOW())
		ON CONFLICT (goal_id)
		DO UPDATE SET
			expected_progress = EXCLUDED.expected_progress,
			confirmed_progress = EXCLUDED.confirmed_progress,
			issues = EXCLUDED.issues,
			suggestions = EXCLUDED.suggestions,
			todos = EXCLUDED.todos,
			risks = EXCLUDED.risks,
			generated_at = NOW()
		RETURNING generated_at
	`

	return s.db.QueryRowContext(ctx, query,
		report.GoalID,
		report.ExpectedProgress,
		report.ConfirmedProgress,
		issues,
		suggestions,
		todos,
		risks,
	).Scan(&report.GeneratedAt)
}

func (s *Storage) GetProgressReportsByOrganization(ctx context.Context, orgID string) ([]models.ProgressReport, error) {
	query := `
		SELECT r.goal_id, r.expected_progress, r.confirmed_progress, r.issues, r.suggestions, r.todos, r.risks, r.generated_at
		FROM progress_reports r
		JOIN product_goals g ON g.id = r.goal_id
		WHERE g.organization_id = $1
		ORDER BY r.generated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]models.ProgressReport, 0)
	for rows.Next() {
		var r models.ProgressReport
		var issues, suggestions, todos, risks []byte
		if err := rows.Scan(
			&r.GoalID,
			&r.ExpectedProgress,
			&r.ConfirmedProgress,
			&issues,
			&suggestions,
			&todos,
			&risks,
			&r.GeneratedAt,
		); err != nil {
			return nil, err
		}

		if r.Issues, err = decodeStringArray(issues); err != nil {
			return nil, err
		}
		if r.Suggestions, err = decodeStringArray(suggestions); err != nil {
			return nil, err
		}
		if r.Todos, err = decodeStringArray(todos); err != nil {
			return nil, err
		}
		if r.Risks, err = decodeStringArray(risks); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// UpsertDevReport fully replaces the organization's report for its date.
func (s *Storage) UpsertDevReport(ctx context.Context, report *models.DevReport) error {
	changes, err := encodeStringArray(report.Changes)
	if err != nil {
		return err
	}
	issues, err := encodeStringArray(report.Issues)
	if err != nil {
		return err
	}
	suggestions, err := encodeStringArray(report.Suggestions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dev_reports (organization_id, report_date, summary, changes, issues, suggestions, generated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, NOW())
		ON CONFLICT (organization_id, report_date)
		DO UPDATE SET
			summary = EXCLUDED.summary,
			changes = EXCLUDED.changes,
			issues = EXCLUDED.issues,
			suggestions = EXCLUDED.suggestions,
			generated_at = NOW()
		RETURNING generated_at
	`

	return s.db.QueryRowContext(ctx, query,
		report.OrganizationID,
		report.ReportDate,
		report.Summary,
		changes,
		issues,
		suggestions,
	).Scan(&report.GeneratedAt)
}

// GetDevReport returns nil without error when no report exists for the date.
func (s *Storage) GetDevReport(ctx context.Context, orgID, date string) (*models.DevReport, error) {
	query := `
		SELECT organization_id, report_date, summary, changes, issues, suggestions, generated_at
		FROM dev_reports
		WHERE organization_id = $1 AND report_date = $2
	`

	var r models.DevReport
	var changes, issues, suggestions []byte
	err := s.db.QueryRowContext(ctx, query, orgID, date).Scan(
		&r.OrganizationID,
		&r.ReportDate,
		&r.Summary,
		&changes,
		&issues,
		&suggestions,
		&r.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if r.Changes, err = decodeStringArray(changes); err != nil {
		return nil, err
	}
	if r.Issues, err = decodeStringArray(issues); err != nil {
		return nil, err
	}
	if r.Suggestions, err = decodeStringArray(suggestions); err != nil {
		return nil, err
	}

	return &r, nil
}
