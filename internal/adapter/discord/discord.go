// Package discord implements the chat adapter for Discord: a gateway
// websocket session for incoming messages and the REST API for posting
// replies and suppressing native link previews.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/xcvr48/pixifull/internal/adapter"
	"github.com/xcvr48/pixifull/internal/core/embed"
)

const (
	// DefaultAPIBaseURL is the Discord REST API root.
	DefaultAPIBaseURL = "https://discord.com/api/v10"

	// DefaultGatewayURL is the Discord gateway websocket endpoint.
	DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

	// suppressEmbedsFlag is the message flag hiding native link previews.
	suppressEmbedsFlag = 1 << 2

	requestTimeout = 15 * time.Second
)

// Adapter is the Discord platform adapter.
type Adapter struct {
	token      string
	apiBase    string
	gatewayURL string
	client     *http.Client
	logger     *zerolog.Logger
}

// New creates a Discord adapter for the given bot token.
func New(token string, logger *zerolog.Logger) *Adapter {
	return NewWithEndpoints(token, DefaultAPIBaseURL, DefaultGatewayURL, logger)
}

// NewWithEndpoints creates an adapter against custom API and gateway
// endpoints, used by tests.
func NewWithEndpoints(token, apiBase, gatewayURL string, logger *zerolog.Logger) *Adapter {
	return &Adapter{
		token:      token,
		apiBase:    apiBase,
		gatewayURL: gatewayURL,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return "discord" }

type messageReference struct {
	MessageID       string `json:"message_id"`
	FailIfNotExists bool   `json:"fail_if_not_exists"`
}

type createMessagePayload struct {
	Embeds           []embedPayload    `json:"embeds"`
	MessageReference *messageReference `json:"message_reference,omitempty"`
}

type editMessagePayload struct {
	Flags int `json:"flags"`
}

type embedPayload struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Author      *embedAuthor `json:"author,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// embedFromDocument maps a preview document onto Discord's embed shape.
// Discord supports the full document, so nothing is dropped.
func embedFromDocument(doc *embed.Document) embedPayload {
	payload := embedPayload{
		Title:       doc.Title,
		Description: doc.Description,
		URL:         doc.URL,
		Color:       doc.Color,
	}

	if !doc.Timestamp.IsZero() {
		payload.Timestamp = doc.Timestamp.Format(time.RFC3339)
	}

	if doc.ImageURL != "" {
		payload.Image = &embedImage{URL: doc.ImageURL}
	}

	for _, f := range doc.Fields {
		payload.Fields = append(payload.Fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	if doc.Author != nil {
		payload.Author = &embedAuthor{
			Name:    doc.Author.Name,
			URL:     doc.Author.URL,
			IconURL: doc.Author.IconURL,
		}
	}

	return payload
}

// Post implements adapter.Adapter by replying to msg with the embed.
func (a *Adapter) Post(ctx context.Context, msg adapter.Message, doc *embed.Document) error {
	payload := createMessagePayload{
		Embeds: []embedPayload{embedFromDocument(doc)},
		MessageReference: &messageReference{
			MessageID:       msg.MessageID,
			FailIfNotExists: true,
		},
	}

	return a.request(ctx, http.MethodPost, "/channels/"+msg.ChannelID+"/messages", payload)
}

// SuppressPreview implements adapter.Adapter by setting the
// SUPPRESS_EMBEDS flag on the original message.
func (a *Adapter) SuppressPreview(ctx context.Context, msg adapter.Message) error {
	payload := editMessagePayload{Flags: suppressEmbedsFlag}

	return a.request(ctx, http.MethodPatch, "/channels/"+msg.ChannelID+"/messages/"+msg.MessageID, payload)
}

func (a *Adapter) request(ctx context.Context, method, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bot "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // detail is best-effort

		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, detail)
	}

	return nil
}
