package resolve

import (
	"context"
	"errors"

	"intersect-backend/internal/models"
)

// ErrMissingEmail aborts a sign-in whose provider profile carries no email.
var ErrMissingEmail = errors.New("provider profile has no email")

type UserStore interface {
	UpsertUser(ctx context.Context, profile models.ProviderProfile) (*models.User, error)
}

// IdentityResolver exchanges a provider identity assertion for a local user
// record, create-or-update keyed by the provider id.
type IdentityResolver struct {
	users UserStore
}

func NewIdentityResolver(users UserStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

func (r *IdentityResolver) Resolve(ctx context.Context, profile models.ProviderProfile) (*models.User, error) {
	if profile.GitHubID == "" {
		return nil, errors.New("provider profile has no id")
	}
	if profile.Email == "" {
		return nil, ErrMissingEmail
	}

	return r.users.UpsertUser(ctx, profile)
}
