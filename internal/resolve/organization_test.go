package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intersect-backend/internal/models"
)

type fakeOrgStore struct {
	owned     map[string]*models.Organization
	members   map[string]*models.OrganizationMember
	orgs      map[string]*models.Organization
	ownerErr  error
	memberErr error
}

func (f *fakeOrgStore) GetOrganizationByOwner(ctx context.Context, githubID string) (*models.Organization, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	return f.owned[githubID], nil
}

func (f *fakeOrgStore) GetMembership(ctx context.Context, githubID string) (*models.OrganizationMember, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return f.members[githubID], nil
}

func (f *fakeOrgStore) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, errors.New("organization not found")
	}
	return org, nil
}

func TestOrganizationResolver_OwnerIsAdmin(t *testing.T) {
	org := &models.Organization{ID: "org-1", OwnerID: "u1"}
	store := &fakeOrgStore{owned: map[string]*models.Organization{"u1": org}}

	m, err := NewOrganizationResolver(store).Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", m.Organization.ID)
	assert.Equal(t, models.RoleAdmin, m.Role)
}

func TestOrganizationResolver_MemberKeepsStoredRole(t *testing.T) {
	org := &models.Organization{ID: "org-1", OwnerID: "owner"}
	store := &fakeOrgStore{
		members: map[string]*models.OrganizationMember{
			"u2": {OrganizationID: "org-1", GitHubID: "u2", Role: models.RoleDeveloper},
		},
		orgs: map[string]*models.Organization{"org-1": org},
	}

	m, err := NewOrganizationResolver(store).Resolve(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "org-1", m.Organization.ID)
	assert.Equal(t, models.RoleDeveloper, m.Role)
}

func TestOrganizationResolver_OwnershipOverridesMembershipRole(t *testing.T) {
	// A membership row with a weaker role must not demote the owner.
	org := &models.Organization{ID: "org-1", OwnerID: "u3"}
	store := &fakeOrgStore{
		members: map[string]*models.OrganizationMember{
			"u3": {OrganizationID: "org-1", GitHubID: "u3", Role: models.RoleDeveloper},
		},
		orgs: map[string]*models.Organization{"org-1": org},
	}

	m, err := NewOrganizationResolver(store).Resolve(context.Background(), "u3")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, m.Role)
}

func TestOrganizationResolver_NoOrganization(t *testing.T) {
	store := &fakeOrgStore{}

	m, err := NewOrganizationResolver(store).Resolve(context.Background(), "stranger")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrNoOrganization)
}

func TestOrganizationResolver_StoreErrorPropagates(t *testing.T) {
	store := &fakeOrgStore{ownerErr: errors.New("db down")}

	_, err := NewOrganizationResolver(store).Resolve(context.Background(), "u1")
	assert.EqualError(t, err, "db down")
}
