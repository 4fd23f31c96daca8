package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intersect-backend/internal/models"
)

func TestMergeGoalReports(t *testing.T) {
	goals := []models.Goal{
		{ID: "g1", Title: "Ship onboarding"},
		{ID: "g2", Title: "Cut page weight"},
		{ID: "g3", Title: "Add billing"},
	}
	reports := []models.ProgressReport{
		{GoalID: "g2", ConfirmedProgress: "about 40%"},
		{GoalID: "g1", ConfirmedProgress: "about 80%"},
		{GoalID: "g9", ConfirmedProgress: "about 10%"}, // no matching goal
	}

	merged := MergeGoalReports(goals, reports)
	require.Len(t, merged, 3)

	// Goal order is preserved regardless of report order.
	assert.Equal(t, "g1", merged[0].ID)
	assert.Equal(t, "g2", merged[1].ID)
	assert.Equal(t, "g3", merged[2].ID)

	require.NotNil(t, merged[0].ProgressReport)
	assert.Equal(t, "about 80%", merged[0].ProgressReport.ConfirmedProgress)
	require.NotNil(t, merged[1].ProgressReport)
	assert.Equal(t, "about 40%", merged[1].ProgressReport.ConfirmedProgress)

	// No report for g3, field stays nil.
	assert.Nil(t, merged[2].ProgressReport)
}

func TestMergeGoalReports_FirstReportWins(t *testing.T) {
	goals := []models.Goal{{ID: "g1"}}
	reports := []models.ProgressReport{
		{GoalID: "g1", ConfirmedProgress: "first"},
		{GoalID: "g1", ConfirmedProgress: "second"},
	}

	merged := MergeGoalReports(goals, reports)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].ProgressReport)
	assert.Equal(t, "first", merged[0].ProgressReport.ConfirmedProgress)
}

func TestMergeGoalReports_Empty(t *testing.T) {
	assert.Empty(t, MergeGoalReports(nil, nil))
	assert.Empty(t, MergeGoalReports(nil, []models.ProgressReport{{GoalID: "g1"}}))

	merged := MergeGoalReports([]models.Goal{{ID: "g1"}}, nil)
	require.Len(t, merged, 1)
	assert.Nil(t, merged[0].ProgressReport)
}
