// Package encourage asks an OpenRouter-compatible chat model for a short
// encouraging line based on recent reminder history. It is a stateless
// collaborator: it reads history and never touches engine state.
package encourage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// ErrNoAPIKey means neither the environment nor the key file provided a key.
var ErrNoAPIKey = errors.New("no OpenRouter API key configured")

// recentRecords is how many history entries feed the prompt.
const recentRecords = 5

// Client calls a chat-completions endpoint.
type Client struct {
	baseURL string
	model   string
	keyFile string
	client  *http.Client
}

// NewClient creates a Client. The API key is read per request from
// OPENROUTER_API_KEY or, failing that, the key file.
func NewClient(baseURL, model, keyFile string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		keyFile: keyFile,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Encourage returns one encouraging line built from the most recent records.
func (c *Client) Encourage(records []domain.Record) (string, error) {
	key, err := c.apiKey()
	if err != nil {
		return "", err
	}

	if len(records) > recentRecords {
		records = records[len(records)-recentRecords:]
	}
	var lines []string
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- [%s] status:%s expectation:%s note:%s",
			r.Timestamp, r.Status, r.Expectation, r.Note))
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a brief, upbeat encouragement assistant."},
			{Role: "user", Content: "Based on these recent reminder records, give the user one short encouraging sentence.\nRecent records:\n" + strings.Join(lines, "\n")},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) apiKey() (string, error) {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return key, nil
	}
	data, err := os.ReadFile(c.keyFile)
	if err != nil {
		return "", ErrNoAPIKey
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", ErrNoAPIKey
}
