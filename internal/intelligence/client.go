// Package intelligence produces narrative analysis of scan findings
// through an OpenAI-compatible chat endpoint. The narrative is
// advisory: risk scores always come from the deterministic risk
// engine, never from model output.
package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"bytemomo/scylla/internal/domain"
)

// Confidence grades how assertive the model's narrative is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Analysis is the structured view of one narrative response.
type Analysis struct {
	Text       string     `json:"text"`
	Confidence Confidence `json:"confidence"`
	KeyPoints  []string   `json:"key_points,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	NextSteps  []string   `json:"next_steps,omitempty"`
	Model      string     `json:"model,omitempty"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	settings   domain.NarrativeSettings
	httpClient *http.Client
}

// NewClient builds a client from settings, filling unset fields with
// workable defaults.
func NewClient(settings domain.NarrativeSettings) *Client {
	if settings.Model == "" {
		settings.Model = "gpt-4o-mini"
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.MaxTokens == 0 {
		settings.MaxTokens = 1024
	}
	return &Client{
		settings:   settings,
		httpClient: &http.Client{Timeout: settings.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Query sends a free-form prompt under the system role selected by
// contextTag and structures the reply. Unknown tags use the general
// analyst role.
func (c *Client) Query(ctx context.Context, prompt, contextTag string) (*Analysis, error) {
	system, ok := systemPrompts[contextTag]
	if !ok {
		system = systemPrompts[defaultContextTag]
	}

	text, err := c.chat(ctx, system, prompt)
	if err != nil {
		return nil, fmt.Errorf("narrative analysis: %w", err)
	}

	analysis := analyzeText(text)
	analysis.Model = c.settings.Model

	log.WithFields(log.Fields{
		"context":    contextTag,
		"confidence": analysis.Confidence,
		"warnings":   len(analysis.Warnings),
	}).Debug("narrative analysis produced")
	return analysis, nil
}

// AnalyzeResults narrates a batch outcome. The deterministic assessment
// is handed to the model as context; nothing flows back from the model
// into scoring.
func (c *Client) AnalyzeResults(ctx context.Context, results []domain.ScanResult, assessment domain.RiskAssessment) (*Analysis, error) {
	return c.Query(ctx, buildFindingsPrompt(results, assessment), defaultContextTag)
}

// Available reports whether the endpoint answers at all. Used to skip
// narrative work instead of failing a report.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.Endpoint, nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.settings.MaxTokens,
		Temperature: 0.3,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("endpoint returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.settings.Authorization != "" {
		req.Header.Set("Authorization", "Bearer "+c.settings.Authorization)
	}
}
