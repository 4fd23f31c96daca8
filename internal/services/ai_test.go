package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intersect-backend/internal/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"summary": "done"}`,
			want:  `{"summary": "done"}`,
		},
		{
			name:  "markdown fences",
			input: "```json\n{\"summary\": \"done\"}\n```",
			want:  `{"summary": "done"}`,
		},
		{
			name:  "prose around the object",
			input: `Here is the report: {"summary": "done"} Let me know!`,
			want:  `{"summary": "done"}`,
		},
		{
			name:  "nested objects stay balanced",
			input: `{"outer": {"inner": 1}} trailing`,
			want:  `{"outer": {"inner": 1}}`,
		},
		{
			name:  "no object returns input unchanged",
			input: "sorry, I cannot do that",
			want:  "sorry, I cannot do that",
		},
		{
			name:  "unbalanced returns input unchanged",
			input: `{"summary": "done"`,
			want:  `{"summary": "done"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "fix login", firstLine("fix login\n\nlong body here"))
	assert.Equal(t, "fix login", firstLine("fix login"))
	assert.Equal(t, "", firstLine("\nbody only"))
}

func TestFallbackDevReport(t *testing.T) {
	report := fallbackDevReport([]string{
		"fix login\n\ndetails",
		"add billing",
		"   ",
	})

	require.NotNil(t, report)
	assert.Equal(t, []string{"fix login", "add billing"}, report.Changes)
	assert.Contains(t, report.Summary, "2 commits")
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Suggestions)
}

func TestFallbackDevReport_NoCommits(t *testing.T) {
	report := fallbackDevReport(nil)
	assert.Equal(t, "No commits landed today.", report.Summary)
	assert.Empty(t, report.Changes)
}

func TestFallbackProgressReport(t *testing.T) {
	goal := models.Goal{ID: "g1", Progress: 60}

	report := fallbackProgressReport(goal)
	assert.Equal(t, "g1", report.GoalID)
	assert.Contains(t, report.ConfirmedProgress, "60%")
	assert.NotEmpty(t, report.Suggestions)
}

func TestFallbackDocumentation(t *testing.T) {
	doc := fallbackDocumentation("fix login")
	assert.Equal(t, "fix login", doc.Title)
	assert.NotEmpty(t, doc.Summary)
}
