package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intersect-backend/internal/models"
)

type fakeUserStore struct {
	upserted *models.ProviderProfile
}

func (f *fakeUserStore) UpsertUser(ctx context.Context, profile models.ProviderProfile) (*models.User, error) {
	f.upserted = &profile
	return &models.User{
		GitHubID: profile.GitHubID,
		Name:     profile.Name,
		Email:    profile.Email,
		Image:    profile.Image,
	}, nil
}

func TestIdentityResolver_Resolve(t *testing.T) {
	store := &fakeUserStore{}
	resolver := NewIdentityResolver(store)

	user, err := resolver.Resolve(context.Background(), models.ProviderProfile{
		GitHubID: "octocat",
		Name:     "The Octocat",
		Email:    "octocat@github.com",
		Image:    "https://avatars.example/octocat",
	})
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.GitHubID)
	require.NotNil(t, store.upserted)
	assert.Equal(t, "octocat@github.com", store.upserted.Email)
}

func TestIdentityResolver_MissingEmail(t *testing.T) {
	store := &fakeUserStore{}

	_, err := NewIdentityResolver(store).Resolve(context.Background(), models.ProviderProfile{
		GitHubID: "octocat",
		Name:     "The Octocat",
	})
	assert.ErrorIs(t, err, ErrMissingEmail)
	assert.Nil(t, store.upserted)
}

func TestIdentityResolver_MissingID(t *testing.T) {
	store := &fakeUserStore{}

	_, err := NewIdentityResolver(store).Resolve(context.Background(), models.ProviderProfile{
		Email: "someone@example.com",
	})
	assert.Error(t, err)
	assert.Nil(t, store.upserted)
}
