// Package telegram implements the chat adapter for Telegram via the
// Bot API. Telegram is the constrained platform variant: bots cannot
// edit other users' messages, so native preview suppression is a no-op,
// and the preview renders as a photo caption carrying a subset of the
// document's fields.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/xcvr48/pixifull/internal/adapter"
	"github.com/xcvr48/pixifull/internal/core/embed"
)

const updateTimeoutSeconds = 30

// Adapter is the Telegram platform adapter.
type Adapter struct {
	bot    *tgbotapi.BotAPI
	logger *zerolog.Logger
}

// New creates a Telegram adapter. The token is validated against the
// Bot API immediately.
func New(token string, logger *zerolog.Logger) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	logger.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorized")

	return &Adapter{bot: bot, logger: logger}, nil
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return "telegram" }

// Run implements adapter.Adapter using long polling.
func (a *Adapter) Run(ctx context.Context, handle adapter.Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSeconds

	updates := a.bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()

			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			msg := update.Message
			if msg == nil || msg.From == nil || msg.From.IsBot {
				continue
			}

			handle(ctx, adapter.Message{
				ChannelID: strconv.FormatInt(msg.Chat.ID, 10),
				MessageID: strconv.Itoa(msg.MessageID),
				UserID:    strconv.FormatInt(msg.From.ID, 10),
				Content:   msg.Text,
			})
		}
	}
}

// Post implements adapter.Adapter. The document becomes a photo reply
// with an HTML caption.
func (a *Adapter) Post(_ context.Context, msg adapter.Message, doc *embed.Document) error {
	chatID, err := strconv.ParseInt(msg.ChannelID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", msg.ChannelID, err)
	}

	replyTo, err := strconv.Atoi(msg.MessageID)
	if err != nil {
		return fmt.Errorf("parse message id %q: %w", msg.MessageID, err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(doc.ImageURL))
	photo.Caption = renderCaption(doc)
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyToMessageID = replyTo

	if _, err := a.bot.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}

	return nil
}

// SuppressPreview implements adapter.Adapter. Bots cannot edit another
// user's message on Telegram, so this capability is absent.
func (a *Adapter) SuppressPreview(_ context.Context, _ adapter.Message) error {
	return nil
}

// renderCaption flattens a document into Telegram caption HTML: linked
// title, formatted description, inline stats on one line, and the
// author name. Non-inline fields carry markdown that captions cannot
// express and are dropped.
func renderCaption(doc *embed.Document) string {
	var sb strings.Builder

	sb.WriteString(`<b><a href="` + doc.URL + `">` + escape(doc.Title) + `</a></b>`)

	if doc.Description != "" {
		sb.WriteString("\n" + escape(doc.Description))
	}

	var stats []string

	for _, f := range doc.Fields {
		if !f.Inline {
			continue
		}

		stats = append(stats, escape(f.Name)+": "+escape(f.Value))
	}

	if len(stats) > 0 {
		sb.WriteString("\n\n" + strings.Join(stats, " · "))
	}

	if doc.Author != nil {
		sb.WriteString("\n" + `by <a href="` + doc.Author.URL + `">` + escape(doc.Author.Name) + `</a>`)
	}

	return sb.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
