package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-hq/taskflow-api/internal/models"
)

func TestParseSubtaskTitles(t *testing.T) {
	titles, err := parseSubtaskTitles(`["Write copy", "Review copy", "  ", "Publish"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Write copy", "Review copy", "Publish"}, titles)
}

func TestParseSubtaskTitles_FencedPayload(t *testing.T) {
	titles, err := parseSubtaskTitles("```json\n[\"Draft outline\", \"Collect data\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft outline", "Collect data"}, titles)
}

func TestParseSubtaskTitles_MalformedPayload(t *testing.T) {
	for _, payload := range []string{
		"not json at all",
		`{"title": "an object, not an array"}`,
		`[1, 2, 3]`,
	} {
		_, err := parseSubtaskTitles(payload)
		assert.Error(t, err, payload)
	}
}

func TestParseInsight(t *testing.T) {
	insight, err := parseInsight(`{
		"summary": "Most work is mid-flight.",
		"productivityScore": 62,
		"recommendations": ["Limit WIP", "Unblock reviews", "Close stale tasks"]
	}`)
	require.NoError(t, err)
	assert.Equal(t, "Most work is mid-flight.", insight.Summary)
	assert.Equal(t, 62.0, insight.ProductivityScore)
	assert.Len(t, insight.Recommendations, 3)
}

func TestParseInsight_ClampsScore(t *testing.T) {
	insight, err := parseInsight(`{"summary": "s", "productivityScore": 250, "recommendations": []}`)
	require.NoError(t, err)
	assert.Equal(t, 100.0, insight.ProductivityScore)

	insight, err = parseInsight(`{"summary": "s", "productivityScore": -10}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, insight.ProductivityScore)
	assert.NotNil(t, insight.Recommendations)
}

func TestParseInsight_Malformed(t *testing.T) {
	_, err := parseInsight(`{"productivityScore": 50}`)
	assert.Error(t, err)

	_, err = parseInsight(`[]`)
	assert.Error(t, err)
}

func TestRedactTasks_OmitsFreeText(t *testing.T) {
	tasks := []models.Task{
		{
			Title:       "Ship report",
			Description: "Contains client names that must not leave the system",
			Status:      models.TaskStatusInProgress,
			Priority:    models.TaskPriorityHigh,
			Image:       "data:image/png;base64,secret",
			Subtasks: []models.Subtask{
				{Title: "internal detail", IsCompleted: true},
				{Title: "another", IsCompleted: false},
			},
		},
	}

	redacted := redactTasks(tasks)

	require.Len(t, redacted, 1)
	assert.Equal(t, "Ship report", redacted[0].Title)
	assert.Equal(t, 1, redacted[0].SubtasksCompleted)
	assert.Equal(t, 2, redacted[0].TotalSubtasks)
}

func TestSuggestSubtasks_NilServiceReturnsEmpty(t *testing.T) {
	var svc *AIService

	titles := svc.SuggestSubtasks(context.Background(), "Title", "Description", "")

	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}

func TestProjectInsights_ZeroTasksYieldsNil(t *testing.T) {
	svc := NewAIService("test-key", "")

	assert.Nil(t, svc.ProjectInsights(context.Background(), nil))
}

func TestStreamPersonaReply_NilServiceEmitsFallback(t *testing.T) {
	var svc *AIService
	var fragments []string

	reply := svc.StreamPersonaReply(context.Background(), models.User{Name: "Sam"}, nil, nil, "Hello?", func(f string) {
		fragments = append(fragments, f)
	})

	assert.Equal(t, ChatFallbackReply, reply)
	assert.Equal(t, []string{ChatFallbackReply}, fragments)
}

func TestPersonaPrompt_IncludesAssignedTasks(t *testing.T) {
	target := models.User{Name: "Jordan Lee", Role: models.RoleStaff, Bio: "Backend lead."}
	assigned := []models.Task{
		{Title: "Fix login bug", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityHigh},
	}

	prompt := personaPrompt(target, assigned)

	assert.Contains(t, prompt, "Jordan Lee")
	assert.Contains(t, prompt, "staff")
	assert.Contains(t, prompt, "Backend lead.")
	assert.Contains(t, prompt, "Fix login bug")

	empty := personaPrompt(target, nil)
	assert.Contains(t, empty, "no assigned tasks")
}
