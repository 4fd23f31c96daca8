package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"intersect-backend/internal/models"
)

const (
	JoinKeyPrefix   = "int_ok_"
	joinKeyLength   = 16
	keyPrefixLength = 12
)

// GenerateJoinKey returns a new organization key, its lookup prefix and its
// bcrypt hash. Only prefix and hash are persisted; the key itself is shown to
// the owner exactly once.
func GenerateJoinKey() (key string, prefix string, hash string, err error) {
	bytes := make([]byte, joinKeyLength)
	if _, err = rand.Read(bytes); err != nil {
		return "", "", "", err
	}

	key = JoinKeyPrefix + hex.EncodeToString(bytes)
	prefix = key[:keyPrefixLength]

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}

	return key, prefix, string(hashBytes), nil
}

func ValidateJoinKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// CreateOrganization inserts the organization and its owner's membership row
// in one transaction, and returns the plaintext join key alongside the record.
func (s *Storage) CreateOrganization(ctx context.Context, ownerID string, input models.CreateOrganizationInput) (*models.Organization, string, error) {
	key, prefix, hash, err := GenerateJoinKey()
	if err != nil {
		return nil, "", err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO organizations (id, name, description, owner_id, key_prefix, key_hash, image_url, github_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '', NOW())
		RETURNING id, name, description, owner_id, key_prefix, key_hash, image_url, github_url, created_at
	`

	var org models.Organization
	err = tx.QueryRowContext(ctx, query,
		uuid.New().String(),
		input.Name,
		input.Description,
		ownerID,
		prefix,
		hash,
		input.ImageURL,
	).Scan(
		&org.ID,
		&org.Name,
		&org.Description,
		&org.OwnerID,
		&org.KeyPrefix,
		&org.KeyHash,
		&org.ImageURL,
		&org.GitHubURL,
		&org.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrAlreadyAffiliated
		}
		return nil, "", err
	}

	// Denormalized display fields come from the user record when it exists.
	var name, image string
	if err := tx.QueryRowContext(ctx, `SELECT name, image FROM users WHERE github_id = $1`, ownerID).
		Scan(&name, &image); err != nil && err != sql.ErrNoRows {
		return nil, "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organization_members (id, organization_id, github_id, role, name, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, uuid.New().String(), org.ID, ownerID, string(models.RoleAdmin), name, image)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrAlreadyAffiliated
		}
		return nil, "", err
	}

	if err := tx.Commit(); err != nil {
		return nil, "", err
	}

	return &org, key, nil
}

const orgColumns = `id, name, description, owner_id, key_prefix, key_hash, image_url, github_url, created_at`

func scanOrganization(row *sql.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Description,
		&org.OwnerID,
		&org.KeyPrefix,
		&org.KeyHash,
		&org.ImageURL,
		&org.GitHubURL,
		&org.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *Storage) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganizationByOwner returns nil without error when the user owns nothing.
func (s *Storage) GetOrganizationByOwner(ctx context.Context, githubID string) (*models.Organization, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE owner_id = $1`, githubID)
	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganizationByKey resolves a plaintext join key: prefix lookup, then a
// bcrypt comparison against each candidate.
func (s *Storage) GetOrganizationByKey(ctx context.Context, key string) (*models.Organization, error) {
	if len(key) < keyPrefixLength {
		return nil, ErrKeyNotFound
	}

	query := `SELECT ` + orgColumns + ` FROM organizations WHERE key_prefix = $1`
	rows, err := s.db.QueryContext(ctx, query, key[:keyPrefixLength])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Description,
			&org.OwnerID,
			&org.KeyPrefix,
			&org.KeyHash,
			&org.ImageURL,
			&org.GitHubURL,
			&org.CreatedAt,
		); err != nil {
			return nil, err
		}

		if ValidateJoinKey(key, org.KeyHash) {
			return &org, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nil, ErrKeyNotFound
}

// RotateJoinKey replaces the organization's join key and returns the new
// plaintext key once.
func (s *Storage) RotateJoinKey(ctx context.Context, orgID string) (string, error) {
	key, prefix, hash, err := GenerateJoinKey()
	if err != nil {
		return "", err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE organizations SET key_prefix = $1, key_hash = $2 WHERE id = $3
	`, prefix, hash, orgID)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrOrgNotFound
	}

	return key, nil
}

func (s *Storage) SetGitHubURL(ctx context.Context, orgID, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE organizations SET github_url = $1 WHERE id = $2`, url, orgID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrgNotFound
	}
	return nil
}

// GetMembership returns the user's membership row, nil when the user is not a
// member of any organization.
func (s *Storage) GetMembership(ctx context.Context, githubID string) (*models.OrganizationMember, error) {
	query := `
		SELECT id, organization_id, github_id, role, name, image, created_at
		FROM organization_members
		WHERE github_id = $1
	`

	var m models.OrganizationMember
	var role string
	if err := s.db.QueryRowContext(ctx, query, githubID).Scan(
		&m.ID,
		&m.OrganizationID,
		&m.GitHubID,
		&role,
		&m.Name,
		&m.Image,
		&m.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.Role = models.ParseRole(role)

	return &m, nil
}

func (s *Storage) GetMembers(ctx context.Context, orgID string) ([]models.OrganizationMember, error) {
	query := `
		SELECT id, organization_id, github_id, role, name, image, created_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.OrganizationMember, 0)
	for rows.Next() {
		var m models.OrganizationMember
		var role string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.GitHubID, &role, &m.Name, &m.Image, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.ParseRole(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

// HasOrganization reports whether the user already owns or belongs to an
// organization. One organization per user is enforced at this layer.
func (s *Storage) HasOrganization(ctx context.Context, githubID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM organizations WHERE owner_id = $1
			UNION
			SELECT 1 FROM organization_members WHERE github_id = $1
		)
	`, githubID).Scan(&exists)
	return exists, err
}

// ListOrganizationsWithRepo returns organizations that have a repository URL
// configured; the dev-report refresher walks this set.
func (s *Storage) ListOrganizationsWithRepo(ctx context.Context) ([]models.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE github_url <> ''`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]models.Organization, 0)
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Description,
			&org.OwnerID,
			&org.KeyPrefix,
			&org.KeyHash,
			&org.ImageURL,
			&org.GitHubURL,
			&org.CreatedAt,
		); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orgs, nil
}
