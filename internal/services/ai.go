package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/models"
)

// ChatFallbackReply is emitted as the single fragment of a chat turn whose
// upstream call failed. Advisory calls never surface hard errors.
const ChatFallbackReply = "Apologies, I'm having trouble responding right now. Let's pick this up in a moment."

// AIService wraps the text-generation boundary. All three operations are
// best-effort enrichment: on failure or malformed output they degrade to an
// empty list, a nil insight, or the fallback reply, and none of them ever
// writes into the entity store.
type AIService struct {
	client *openai.Client
	model  string
}

// NewAIService creates an AIService. An empty model selects GPT-4o.
func NewAIService(apiKey, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// SuggestSubtasks asks for 4-6 short imperative subtasks for the given task.
// An optional inline image (data URL) is attached for visual context. On any
// failure the result is an empty list.
func (s *AIService) SuggestSubtasks(ctx context.Context, title, description, imageDataURL string) []string {
	if s == nil || s.client == nil {
		return []string{}
	}

	prompt := fmt.Sprintf(`Break down the following task into %d-%d actionable subtasks.
Title: %s
Description: %s

Return only a JSON array of short imperative strings, no explanation.`,
		constants.MinSuggestedSubtasks, constants.MaxSuggestedSubtasks, title, description)

	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if imageDataURL != "" {
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt + "\nAn image is attached for visual context; use it to make the subtasks more specific."},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageDataURL}},
		}
	} else {
		message.Content = prompt
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("ai: subtask suggestion failed: %v", err)
		return []string{}
	}
	if len(resp.Choices) == 0 {
		return []string{}
	}

	titles, err := parseSubtaskTitles(resp.Choices[0].Message.Content)
	if err != nil {
		log.Printf("ai: malformed subtask payload: %v", err)
		return []string{}
	}
	return titles
}

// ProjectInsights analyzes a redacted summary of all tasks. With zero tasks
// or on any failure it yields nil and the caller keeps its prior result.
func (s *AIService) ProjectInsights(ctx context.Context, tasks []models.Task) *models.ProjectInsight {
	if s == nil || s.client == nil || len(tasks) == 0 {
		return nil
	}

	summary, err := json.Marshal(redactTasks(tasks))
	if err != nil {
		return nil
	}

	prompt := fmt.Sprintf(`Analyze these tasks and report on project progress and potential bottlenecks.
Tasks: %s

Return only a JSON object with fields:
  "summary" (string, high-level progress summary),
  "productivityScore" (number from 0 to 100 based on completion rates),
  "recommendations" (array of 3 concrete recommendations to improve velocity).`, summary)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("ai: insight generation failed: %v", err)
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	insight, err := parseInsight(resp.Choices[0].Message.Content)
	if err != nil {
		log.Printf("ai: malformed insight payload: %v", err)
		return nil
	}
	return insight
}

// StreamPersonaReply produces a chat turn in the voice of the target staff
// member, emitting text fragments through emit as they arrive and returning
// the concatenated reply. On failure it emits ChatFallbackReply as a single
// fragment instead of raising.
func (s *AIService) StreamPersonaReply(
	ctx context.Context,
	target models.User,
	assigned []models.Task,
	history []models.ChatMessage,
	message string,
	emit func(string),
) string {
	if s == nil || s.client == nil {
		emit(ChatFallbackReply)
		return ChatFallbackReply
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: personaPrompt(target, assigned)},
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.ChatRoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		log.Printf("ai: chat stream failed to start: %v", err)
		emit(ChatFallbackReply)
		return ChatFallbackReply
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("ai: chat stream interrupted: %v", err)
			if full.Len() == 0 {
				emit(ChatFallbackReply)
				return ChatFallbackReply
			}
			break
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		emit(fragment)
	}

	if full.Len() == 0 {
		emit(ChatFallbackReply)
		return ChatFallbackReply
	}
	return full.String()
}

// redactedTask is the only task data that leaves the system for insight
// generation: title, workflow position, and subtask completion counts.
type redactedTask struct {
	Title             string              `json:"title"`
	Status            models.TaskStatus   `json:"status"`
	Priority          models.TaskPriority `json:"priority"`
	SubtasksCompleted int                 `json:"subtasksCompleted"`
	TotalSubtasks     int                 `json:"totalSubtasks"`
}

func redactTasks(tasks []models.Task) []redactedTask {
	out := make([]redactedTask, len(tasks))
	for i, t := range tasks {
		completed := 0
		for _, st := range t.Subtasks {
			if st.IsCompleted {
				completed++
			}
		}
		out[i] = redactedTask{
			Title:             t.Title,
			Status:            t.Status,
			Priority:          t.Priority,
			SubtasksCompleted: completed,
			TotalSubtasks:     len(t.Subtasks),
		}
	}
	return out
}

func personaPrompt(target models.User, assigned []models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s on a task-board team. Stay in character and answer as yourself, briefly and professionally.\n",
		target.Name, strings.ToLower(string(target.Role)))
	if target.Bio != "" {
		fmt.Fprintf(&b, "About you: %s\n", target.Bio)
	}
	if len(assigned) == 0 {
		b.WriteString("You currently have no assigned tasks.")
		return b.String()
	}
	b.WriteString("Your currently assigned tasks:\n")
	for _, t := range assigned {
		fmt.Fprintf(&b, "- %s [%s, %s priority]\n", t.Title, t.Status, t.Priority)
	}
	return b.String()
}

// parseSubtaskTitles decodes a JSON string array, tolerating a fenced code
// block around it. Blank entries are dropped.
func parseSubtaskTitles(content string) ([]string, error) {
	var titles []string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &titles); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// parseInsight decodes the structured insight record and clamps the score
// into [0,100].
func parseInsight(content string) (*models.ProjectInsight, error) {
	var insight models.ProjectInsight
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &insight); err != nil {
		return nil, err
	}
	if insight.Summary == "" {
		return nil, errors.New("insight has no summary")
	}
	if insight.ProductivityScore < 0 {
		insight.ProductivityScore = 0
	}
	if insight.ProductivityScore > 100 {
		insight.ProductivityScore = 100
	}
	if insight.Recommendations == nil {
		insight.Recommendations = []string{}
	}
	return &insight, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
