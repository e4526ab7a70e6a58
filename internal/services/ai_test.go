package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

func chatServer(t *testing.T, status int, content string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   openai.GPT4o,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testAssistant(srv *httptest.Server) *OpenAIAssistant {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return newOpenAIAssistant(openai.NewClientWithConfig(cfg), "", time.Second)
}

func TestOpenAIAssistant_SuggestSubtasks(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "```json\n[{\"title\":\"Interview stakeholders\",\"estimatedHours\":3,\"priority\":\"High\"}]\n```")
	a := testAssistant(srv)

	suggestions, err := a.SuggestSubtasks(context.Background(), models.Task{Title: "Market study"}, "")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Interview stakeholders", suggestions[0].Title)
	assert.Equal(t, 3.0, suggestions[0].EstimatedHours)
	assert.Equal(t, models.PriorityHigh, suggestions[0].Priority)
}

func TestOpenAIAssistant_MalformedAnswer(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "Sure! Here are some ideas.")
	a := testAssistant(srv)

	_, err := a.SuggestSubtasks(context.Background(), models.Task{Title: "Market study"}, "")
	assert.ErrorContains(t, err, "failed to parse AI response")
}

func TestOpenAIAssistant_SummarizeForInvoice(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "  Conducted interviews.  ")
	a := testAssistant(srv)

	text, err := a.SummarizeForInvoice(context.Background(), models.Task{Title: "Market study"}, []models.TimeLog{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Hours: 2, Notes: "calls"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Conducted interviews.", text)
}

func TestOpenAIAssistant_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv, hits := chatServer(t, http.StatusInternalServerError, "")
	a := testAssistant(srv)
	ctx := context.Background()

	for range 4 {
		_, err := a.SummarizeForInvoice(ctx, models.Task{}, nil)
		require.Error(t, err)
	}
	_, err := a.SummarizeForInvoice(ctx, models.Task{}, nil)

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(4), atomic.LoadInt32(hits))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("```\n[]\n```"))
	assert.Equal(t, "[1]", stripCodeFence("  [1] "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}
