package storage

import (
	"context"
	"database/sql"

	"intersect-backend/internal/models"
)

// UpsertUser creates the user on first sign-in and refreshes name/email/image
// on every subsequent one. Last write wins; identity is the provider id.
func (s *Storage) UpsertUser(ctx context.Context, profile models.ProviderProfile) (*models.User, error) {
	query := `
		INSERT INTO users (github_id, name, email, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (github_id)
		DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, image = EXCLUDED.image, updated_at = NOW()
		RETURNING github_id, name, email, image, created_at, updated_at
	`

	var user models.User
	if err := s.db.QueryRowContext(ctx, query, profile.GitHubID, profile.Name, profile.Email, profile.Image).Scan(
		&user.GitHubID,
		&user.Name,
		&user.Email,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Storage) GetUser(ctx context.Context, githubID string) (*models.User, error) {
	query := `
		SELECT github_id, name, email, image, created_at, updated_at
		FROM users
		WHERE github_id = $1
	`

	var user models.User
	if err := s.db.QueryRowContext(ctx, query, githubID).Scan(
		&user.GitHubID,
		&user.Name,
		&user.Email,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}
