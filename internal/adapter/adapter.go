// Package adapter defines the chat platform boundary. Each platform
// implements the same capability set; where a platform lacks a
// capability (preview suppression, rich embed fields) the adapter
// degrades rather than erroring.
package adapter

import (
	"context"

	"github.com/xcvr48/pixifull/internal/core/embed"
)

// Message is an incoming chat message in platform-neutral form.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Content   string
}

// Handler receives each incoming message. Implementations must not
// block the adapter's event loop.
type Handler func(ctx context.Context, msg Message)

// Adapter connects one chat platform to the preview pipeline.
type Adapter interface {
	// Name identifies the platform in logs and metrics.
	Name() string

	// Run connects to the platform and delivers incoming messages to
	// handle until ctx is canceled.
	Run(ctx context.Context, handle Handler) error

	// Post renders doc as a reply to msg in its channel.
	Post(ctx context.Context, msg Message, doc *embed.Document) error

	// SuppressPreview hides the platform's own link preview on msg.
	// Platforms without the capability no-op.
	SuppressPreview(ctx context.Context, msg Message) error
}
