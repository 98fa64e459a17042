// Package coach wraps the external generative-text endpoint behind an
// always-available text API. Failures never escape: every failure path
// resolves to one of the fixed fallback strings, so callers can treat
// the result as plain text without error handling. Calls are stateless
// and never retried.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fixed fallback strings. Tests and the UI rely on these exact values.
const (
	FallbackOffline = "AI Offline: Check API Key."
	FallbackNoText  = "No intelligence available."
	FallbackComms   = "Communication breakdown with AI Network."
)

// DefaultInstruction is the persona applied when the caller passes none.
const DefaultInstruction = "You are an elite esports coach for team Syrix. Provide concise, professional, tactical insights."

type Client struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
	log     *zap.Logger
}

func New(baseURL, model, apiKey string, log *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		log:     log,
	}
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Ask issues one generate call and always returns usable text.
func (c *Client) Ask(ctx context.Context, prompt, instruction string) string {
	if instruction == "" {
		instruction = DefaultInstruction
	}

	body, err := json.Marshal(generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: instruction}}},
	})
	if err != nil {
		c.log.Warn("coach request encode failed", zap.Error(err))
		return FallbackComms
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return FallbackComms
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("coach endpoint unreachable", zap.Error(err))
		return FallbackComms
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("coach endpoint refused", zap.Int("status", resp.StatusCode))
		return FallbackOffline
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn("coach response malformed", zap.Error(err))
		return FallbackComms
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 ||
		out.Candidates[0].Content.Parts[0].Text == "" {
		return FallbackNoText
	}
	return out.Candidates[0].Content.Parts[0].Text
}

// MapInsight asks for one tactical note about a map.
func (c *Client) MapInsight(ctx context.Context, mapName string) string {
	prompt := fmt.Sprintf("Provide one elite-level tactical secret or default setup for the map %s in pro Valorant play.", mapName)
	return c.Ask(ctx, prompt, "")
}

// RefineMessage rewrites a chat draft; wrapping quotes from the model
// are stripped so the result can go straight back into the composer.
func (c *Client) RefineMessage(ctx context.Context, message string) string {
	prompt := fmt.Sprintf("Rewrite this team message to be professional and motivating: %q", message)
	out := strings.TrimSpace(c.Ask(ctx, prompt, ""))
	if len(out) >= 2 && strings.HasPrefix(out, `"`) && strings.HasSuffix(out, `"`) {
		out = strings.TrimSpace(out[1 : len(out)-1])
	}
	return out
}
