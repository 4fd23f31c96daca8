package resolve

import (
	"context"
	"errors"

	"intersect-backend/internal/models"
)

// ErrNoOrganization is a terminal onboarding state, not a failure: the user
// has simply not created or joined an organization yet.
var ErrNoOrganization = errors.New("no organization for user")

type OrgStore interface {
	// GetOrganizationByOwner returns nil, nil when the user owns nothing.
	GetOrganizationByOwner(ctx context.Context, githubID string) (*models.Organization, error)
	// GetMembership returns nil, nil when the user is not a member anywhere.
	GetMembership(ctx context.Context, githubID string) (*models.OrganizationMember, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
}

// OrganizationResolver maps an external user id to the single organization the
// user belongs to and derives their effective role. Ownership wins: the owner
// is admin regardless of any stored membership role.
type OrganizationResolver struct {
	orgs OrgStore
}

func NewOrganizationResolver(orgs OrgStore) *OrganizationResolver {
	return &OrganizationResolver{orgs: orgs}
}

func (r *OrganizationResolver) Resolve(ctx context.Context, githubID string) (*models.Membership, error) {
	org, err := r.orgs.GetOrganizationByOwner(ctx, githubID)
	if err != nil {
		return nil, err
	}
	if org != nil {
		return &models.Membership{Organization: org, Role: models.RoleAdmin}, nil
	}

	member, err := r.orgs.GetMembership(ctx, githubID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNoOrganization
	}

	org, err = r.orgs.GetOrganization(ctx, member.OrganizationID)
	if err != nil {
		return nil, err
	}

	role := member.Role
	if githubID == org.OwnerID {
		role = models.RoleAdmin
	}

	return &models.Membership{Organization: org, Role: role}, nil
}
