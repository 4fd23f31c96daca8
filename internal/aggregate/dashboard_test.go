package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intersect-backend/internal/models"
)

type fakeStore struct {
	goals      []models.Goal
	goalsErr   error
	reports    []models.ProgressReport
	reportsErr error
	apps       []models.Application
	appsErr    error
}

func (f *fakeStore) GetGoalsByOrganization(ctx context.Context, orgID string) ([]models.Goal, error) {
	return f.goals, f.goalsErr
}

func (f *fakeStore) GetProgressReportsByOrganization(ctx context.Context, orgID string) ([]models.ProgressReport, error) {
	return f.reports, f.reportsErr
}

func (f *fakeStore) GetApplicationsByOrganization(ctx context.Context, orgID, status string) ([]models.Application, error) {
	return f.apps, f.appsErr
}

type fakeActivity struct {
	commits []models.Commit
	pulls   []models.PullRequest
	err     error
}

func (f *fakeActivity) UserCommits(ctx context.Context, repoURL, githubID string) ([]models.Commit, error) {
	return f.commits, f.err
}

func (f *fakeActivity) UserPulls(ctx context.Context, repoURL, githubID string) ([]models.PullRequest, error) {
	return f.pulls, f.err
}

type fakeReports struct {
	report *models.DevReport
	err    error
}

func (f *fakeReports) LatestDevReport(ctx context.Context, org *models.Organization) (*models.DevReport, error) {
	return f.report, f.err
}

func testOrg() *models.Organization {
	return &models.Organization{ID: "org-1", GitHubURL: "https://github.com/acme/app"}
}

func TestAggregator_Dashboard_AllSections(t *testing.T) {
	store := &fakeStore{
		goals:   []models.Goal{{ID: "g1"}, {ID: "g2"}},
		reports: []models.ProgressReport{{GoalID: "g1", ConfirmedProgress: "about half"}},
		apps:    []models.Application{{ID: "a1", Status: models.ApplicationPending}},
	}
	activity := &fakeActivity{
		commits: []models.Commit{{SHA: "abc123"}},
		pulls:   []models.PullRequest{{Number: 7}},
	}
	reports := &fakeReports{report: &models.DevReport{Summary: "shipped things"}}

	d := New(store, activity, reports).Dashboard(context.Background(), testOrg(), "u1", models.RoleAdmin)

	require.Empty(t, d.Goals.Error)
	require.Len(t, d.Goals.Data, 2)
	require.NotNil(t, d.Goals.Data[0].ProgressReport)
	assert.Nil(t, d.Goals.Data[1].ProgressReport)

	require.NotNil(t, d.Applications)
	assert.Len(t, d.Applications.Data, 1)

	assert.Len(t, d.Commits.Data, 1)
	assert.Len(t, d.Pulls.Data, 1)
	require.NotNil(t, d.DevReport.Data)
	assert.Equal(t, "shipped things", d.DevReport.Data.Summary)
}

func TestAggregator_Dashboard_NonAdminHasNoApplications(t *testing.T) {
	store := &fakeStore{goals: []models.Goal{{ID: "g1"}}}

	d := New(store, &fakeActivity{}, &fakeReports{}).
		Dashboard(context.Background(), testOrg(), "u1", models.RoleDeveloper)

	assert.Nil(t, d.Applications)
}

func TestAggregator_Dashboard_SectionFailureDegrades(t *testing.T) {
	store := &fakeStore{goals: []models.Goal{{ID: "g1"}}}
	activity := &fakeActivity{err: errors.New("github unreachable")}
	reports := &fakeReports{report: &models.DevReport{Summary: "ok"}}

	d := New(store, activity, reports).Dashboard(context.Background(), testOrg(), "u1", models.RoleDeveloper)

	// Broken activity sections carry their error; the rest still render.
	assert.Contains(t, d.Commits.Error, "github unreachable")
	assert.Contains(t, d.Pulls.Error, "github unreachable")
	assert.Empty(t, d.Goals.Error)
	require.Len(t, d.Goals.Data, 1)
	require.NotNil(t, d.DevReport.Data)
}

func TestAggregator_Dashboard_ReportsFailureKeepsGoals(t *testing.T) {
	store := &fakeStore{
		goals:      []models.Goal{{ID: "g1"}, {ID: "g2"}},
		reportsErr: errors.New("db timeout"),
	}

	d := New(store, &fakeActivity{}, &fakeReports{}).
		Dashboard(context.Background(), testOrg(), "u1", models.RoleDeveloper)

	require.Len(t, d.Goals.Data, 2)
	assert.Nil(t, d.Goals.Data[0].ProgressReport)
	assert.Contains(t, d.Goals.Error, "progress reports unavailable")
	assert.Contains(t, d.Goals.Error, "db timeout")
}

func TestAggregator_Dashboard_GoalsFailure(t *testing.T) {
	store := &fakeStore{goalsErr: errors.New("relation missing")}

	d := New(store, &fakeActivity{}, &fakeReports{}).
		Dashboard(context.Background(), testOrg(), "u1", models.RoleDeveloper)

	assert.Nil(t, d.Goals.Data)
	assert.Contains(t, d.Goals.Error, "relation missing")
}
