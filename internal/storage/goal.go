package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"intersect-backend/internal/models"
)

const goalColumns = `id, organization_id, title, description, status, priority, due_date, assignee, tags, progress, created_at`

func scanGoal(scan func(dest ...interface{}) error) (models.Goal, error) {
	var g models.Goal
	var tagsJSON []byte
	err := scan(
		&g.ID,
		&g.OrganizationID,
		&g.Title,
		&g.Description,
		&g.Status,
		&g.Priority,
		&g.DueDate,
		&g.Assignee,
		&tagsJSON,
		&g.Progress,
		&g.CreatedAt,
	)
	if err != nil {
		return models.Goal{}, err
	}

	if g.Tags, err = decodeStringArray(tagsJSON); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

func (s *Storage) CreateGoal(ctx context.Context, orgID string, input models.CreateGoalInput) (*models.Goal, error) {
	tagsJSON, err := encodeStringArray(input.Tags)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO product_goals (id, organization_id, title, description, status, priority, due_date, assignee, tags, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, 0, NOW())
		RETURNING ` + goalColumns

	row := s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		orgID,
		input.Title,
		input.Description,
		models.GoalPending,
		input.Priority,
		input.DueDate,
		input.Assignee,
		tagsJSON,
	)

	goal, err := scanGoal(row.Scan)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *Storage) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM product_goals WHERE id = $1`, id)

	goal, err := scanGoal(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *Storage) GetGoalsByOrganization(ctx context.Context, orgID string) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM product_goals WHERE organization_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}

// UpdateGoalProgress sets the numeric progress and keeps the status in step:
// 100 completes the goal, anything above zero moves it in progress.
func (s *Storage) UpdateGoalProgress(ctx context.Context, id string, progress int) (*models.Goal, error) {
	query := `
		UPDATE product_goals
		SET progress = $2,
		    status = CASE
		        WHEN $2 >= 100 THEN 'completed'
		        WHEN $2 > 0 AND status = 'pending' THEN 'in_progress'
		        ELSE status
		    END
		WHERE id = $1
		RETURNING ` + goalColumns

	row := s.db.QueryRowContext(ctx, query, id, progress)

	goal, err := scanGoal(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}
