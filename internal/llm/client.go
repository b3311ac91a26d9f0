package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("llm unavailable")

// Client talks to an Ollama-compatible /api/generate endpoint.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// StudyAdvice asks the model for a narrative study plan for one subject.
func (c *Client) StudyAdvice(ctx context.Context, subject string, examDate time.Time, dailyHours float64) (string, error) {
	prompt := fmt.Sprintf(
		"You are a study planner assistant. Generate a %s study plan. Exam date: %s. Study time per day: %.1f hours.",
		subject, examDate.Format("2006-01-02"), dailyHours)
	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":  c.model,
		"prompt": prompt,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// Ollama streams one JSON object per line; aggregate the response fields.
	if bytes.ContainsRune(raw, '\n') {
		return aggregateStream(raw)
	}
	var single struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &single); err != nil {
		return "", err
	}
	if single.Response == "" {
		return "", errors.New("empty llm response")
	}
	return single.Response, nil
}

type chunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func aggregateStream(raw []byte) (string, error) {
	var b strings.Builder
	for _, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var c chunk
		if err := json.Unmarshal(line, &c); err != nil {
			return "", fmt.Errorf("bad stream chunk: %w", err)
		}
		b.WriteString(c.Response)
	}
	if b.Len() == 0 {
		return "", errors.New("empty llm response")
	}
	return b.String(), nil
}
