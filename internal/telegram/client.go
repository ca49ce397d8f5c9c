package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/broadcast"
)

// Client adapts a *bot.Bot to broadcast.Platform. Media is re-sent by file
// reference, never re-uploaded.
type Client struct {
	b *bot.Bot
}

// NewClient wraps b.
func NewClient(b *bot.Bot) *Client {
	return &Client{b: b}
}

var _ broadcast.Platform = (*Client)(nil)

func (c *Client) Forward(ctx context.Context, to int64, ref broadcast.Reference) error {
	_, err := c.b.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     to,
		FromChatID: ref.ChatID,
		MessageID:  ref.MessageID,
	})
	if err != nil {
		return fmt.Errorf("forward message %d from chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

func (c *Client) SendText(ctx context.Context, to int64, text string) error {
	if _, err := c.b.SendMessage(ctx, &bot.SendMessageParams{ChatID: to, Text: text}); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

func (c *Client) SendPhoto(ctx context.Context, to int64, fileID, caption string) error {
	_, err := c.b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  to,
		Photo:   &models.InputFileString{Data: fileID},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (c *Client) SendVideo(ctx context.Context, to int64, fileID, caption string) error {
	_, err := c.b.SendVideo(ctx, &bot.SendVideoParams{
		ChatID:  to,
		Video:   &models.InputFileString{Data: fileID},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(ctx context.Context, to int64, fileID, caption string) error {
	_, err := c.b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   to,
		Document: &models.InputFileString{Data: fileID},
		Caption:  caption,
	})
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// FailureReason maps a Bot API error to a short metrics label.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, bot.ErrorForbidden):
		return "blocked"
	case isTooManyRequests(err):
		return "rate_limited"
	case errors.Is(err, bot.ErrorBadRequest):
		return "bad_request"
	default:
		return "other"
	}
}

func isTooManyRequests(err error) bool {
	var tooMany *bot.TooManyRequestsError
	return errors.As(err, &tooMany)
}
