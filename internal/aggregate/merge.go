package aggregate

import "intersect-backend/internal/models"

// MergeGoalReports attaches to each goal its progress report, matched by
// goal_id. The result preserves goal order; a goal without a report keeps the
// field absent, and reports without a goal are dropped.
func MergeGoalReports(goals []models.Goal, reports []models.ProgressReport) []models.GoalWithReport {
	byGoal := make(map[string]*models.ProgressReport, len(reports))
	for i := range reports {
		if _, ok := byGoal[reports[i].GoalID]; !ok {
			byGoal[reports[i].GoalID] = &reports[i]
		}
	}

	merged := make([]models.GoalWithReport, 0, len(goals))
	for _, goal := range goals {
		merged = append(merged, models.GoalWithReport{
			Goal:           goal,
			ProgressReport: byGoal[goal.ID],
		})
	}

	return merged
}
