package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"intersect-backend/internal/models"
)

const applicationColumns = `id, organization_id, github_id, name, email, image, status, role, created_at, updated_at`

type applicationRow struct {
	models.Application
	RoleValue sql.NullString
}

func (r *applicationRow) fields() []interface{} {
	return []interface{}{
		&r.ID,
		&r.OrganizationID,
		&r.GitHubID,
		&r.Name,
		&r.Email,
		&r.Image,
		&r.Status,
		&r.RoleValue,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

func (r *applicationRow) application() models.Application {
	app := r.Application
	if r.RoleValue.Valid {
		app.Role = models.ParseRole(r.RoleValue.String)
	}
	return app
}

// CreateApplication records a pending join request carrying the applicant's
// denormalized identity fields.
func (s *Storage) CreateApplication(ctx context.Context, orgID string, profile models.ProviderProfile) (*models.Application, error) {
	query := `
		INSERT INTO applications (id, organization_id, github_id, name, email, image, status, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NOW(), NOW())
		RETURNING ` + applicationColumns

	var row applicationRow
	err := s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		orgID,
		profile.GitHubID,
		profile.Name,
		profile.Email,
		profile.Image,
		models.ApplicationPending,
	).Scan(row.fields()...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyAffiliated
		}
		return nil, err
	}

	app := row.application()
	return &app, nil
}

func (s *Storage) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	var row applicationRow
	if err := s.db.QueryRowContext(ctx, query, id).Scan(row.fields()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	app := row.application()
	return &app, nil
}

// GetApplicationsByOrganization lists applications for an organization,
// optionally filtered to a single status.
func (s *Storage) GetApplicationsByOrganization(ctx context.Context, orgID, status string) ([]models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE organization_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, orgID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		var row applicationRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, err
		}
		apps = append(apps, row.application())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

// DecideApplication moves a pending application to approved or rejected. The
// guarded UPDATE is the state machine: a non-pending row matches nothing and
// the transition is refused. Approval inserts the membership row in the same
// transaction.
func (s *Storage) DecideApplication(ctx context.Context, id string, decision models.ApplicationDecision) (*models.Application, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE applications
		SET status = $2, role = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + applicationColumns

	var row applicationRow
	err = tx.QueryRowContext(ctx, query,
		id,
		decision.Status,
		nullIfEmpty(string(decision.Role)),
		models.ApplicationPending,
	).Scan(row.fields()...)
	if err == sql.ErrNoRows {
		// Distinguish a closed application from a missing one.
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = $1`, id).Scan(&status); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrApplicationNotFound
			}
			return nil, err
		}
		return nil, ErrApplicationClosed
	}
	if err != nil {
		return nil, err
	}

	app := row.application()

	if decision.Status == models.ApplicationApproved {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO organization_members (id, organization_id, github_id, role, name, image, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
		`, uuid.New().String(), app.OrganizationID, app.GitHubID, string(decision.Role), app.Name, app.Image)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrAlreadyAffiliated
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &app, nil
}
