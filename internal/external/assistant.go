package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUpstream marks a failed pass-through call
var ErrUpstream = errors.New("upstream call failed")

// Assistant answers free-text agronomy questions
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

type chatAssistant struct {
	endpoint string
	key      string
	model    string
	httpc    *http.Client
}

// NewChatAssistant calls an OpenAI compatible chat completions endpoint
func NewChatAssistant(endpoint, key, model string) Assistant {
	return &chatAssistant{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		model:    model,
		httpc:    &http.Client{Timeout: 25 * time.Second},
	}
}

func (c *chatAssistant) Ask(ctx context.Context, question string) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []message{
			{Role: "system", Content: "You are an agronomist advising Chilean fruit growers. Answer concisely."},
			{Role: "user", Content: question},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: assistant returned %s", ErrUpstream, resp.Status)
	}

	var out struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode assistant reply: %v", ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrUpstream)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// MockAssistant answers without any network call. It is used when no
// assistant endpoint is configured.
type MockAssistant struct{}

func (MockAssistant) Ask(ctx context.Context, question string) (string, error) {
	return fmt.Sprintf("Assistant is not configured. Received question: %q", question), nil
}
