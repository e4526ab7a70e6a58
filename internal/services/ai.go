package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

// SubtaskSuggestion is one step proposed for breaking a task down.
type SubtaskSuggestion struct {
	Title          string          `json:"title"`
	EstimatedHours float64         `json:"estimatedHours"`
	Priority       models.Priority `json:"priority"`
}

// Assistant generates text for a task. Implementations may be slow or fail;
// callers treat every error as "no suggestion".
type Assistant interface {
	SuggestSubtasks(ctx context.Context, task models.Task, notes string) ([]SubtaskSuggestion, error)
	SummarizeForInvoice(ctx context.Context, task models.Task, logs []models.TimeLog) (string, error)
}

// OpenAIAssistant implements Assistant with the OpenAI chat API.
type OpenAIAssistant struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewOpenAIAssistant(apiKey, model string, timeout time.Duration) *OpenAIAssistant {
	return newOpenAIAssistant(openai.NewClient(apiKey), model, timeout)
}

func newOpenAIAssistant(client *openai.Client, model string, timeout time.Duration) *OpenAIAssistant {
	if model == "" {
		model = openai.GPT4o
	}
	if timeout <= 0 {
		timeout = constants.DefaultAITimeout
	}
	return &OpenAIAssistant{
		client:  client,
		model:   model,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openai",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
			},
		}),
	}
}

// SuggestSubtasks asks for 3-6 actionable subtasks with hour estimates.
func (a *OpenAIAssistant) SuggestSubtasks(ctx context.Context, task models.Task, notes string) ([]SubtaskSuggestion, error) {
	if notes == "" {
		notes = task.Notes
	}

	prompt := fmt.Sprintf(`I am a consultant working on a project.
Task: %q
Category: %q
Project: %q
Context/Notes: %q

Break this task down into 3-6 actionable subtasks with estimated hours, prioritized logically.
Return only a JSON array of objects:
[{"title": "actionable subtask title", "estimatedHours": 2, "priority": "High" | "Medium" | "Low"}]`,
		task.Title, task.Category, task.ProjectName, truncate(notes, constants.MaxAIInputLength))

	content, err := a.complete(ctx, prompt, 0.3)
	if err != nil {
		return nil, err
	}

	var suggestions []SubtaskSuggestion
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return suggestions, nil
}

// SummarizeForInvoice writes a 2-3 sentence invoice line for the work logged.
func (a *OpenAIAssistant) SummarizeForInvoice(ctx context.Context, task models.Task, logs []models.TimeLog) (string, error) {
	type logLine struct {
		Date  string  `json:"date"`
		Hours float64 `json:"hours"`
		Notes string  `json:"notes"`
	}
	lines := make([]logLine, len(logs))
	for i, l := range logs {
		lines[i] = logLine{Date: l.Date.Format(constants.DateLayout), Hours: l.Hours, Notes: l.Notes}
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("failed to encode logs: %w", err)
	}

	prompt := fmt.Sprintf(`Create a professional invoice description line item summary for the following work logs.
Task Name: %s
Logs: %s

Summarize the work completed in 2-3 sentences suitable for a client invoice.
Do not include prices, just the description of work.`, task.Title, truncate(string(encoded), constants.MaxAIInputLength))

	content, err := a.complete(ctx, prompt, 0.7)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (a *OpenAIAssistant) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.breaker.Execute(func() (interface{}, error) {
		resp, err := a.client.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{
				Model: a.model,
				Messages: []openai.ChatCompletionMessage{
					{
						Role:    openai.ChatMessageRoleUser,
						Content: prompt,
					},
				},
				Temperature: temperature,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// stripCodeFence removes a ```json fence some models wrap JSON answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
