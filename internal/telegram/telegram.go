package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxSingleMessages is the number of release changes sent as individual
// messages; more are sent as one digest.
const maxSingleMessages = 3

// sender is the part of tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client represents a Telegram Bot API client
type Client struct {
	bot    sender
	chatID int64
}

// NewClient creates a new Telegram client. It contacts the Bot API to
// validate the token.
func NewClient(botToken, chatID string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &Client{bot: bot, chatID: id}, nil
}

func parseChatID(chatID string) (int64, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return 0, fmt.Errorf("chat ID is required")
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID %q: %w", chatID, err)
	}
	return id, nil
}

// SendMessage sends an HTML text message to the configured chat
func (c *Client) SendMessage(text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// NotifyReleases announces new or changed ticket release dates. Up to three
// are sent one message each; more are combined into a digest.
func (c *Client) NotifyReleases(ctx context.Context, releases []Release) error {
	if len(releases) == 0 {
		return nil
	}

	if len(releases) > maxSingleMessages {
		return c.SendMessage(FormatDigest(releases))
	}

	for _, r := range releases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.SendMessage(FormatRelease(r)); err != nil {
			return err
		}
	}
	return nil
}
