package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chartbot/pkg/bus"
	"chartbot/pkg/channel"
	"chartbot/pkg/config"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const channelName = "telegram"
const messagePreviewLimit = 240
const typingRefreshInterval = 4 * time.Second

// Client wraps the Telegram bot API for sending chart replies.
type Client struct {
	bot *telego.Bot
	log *slog.Logger
}

// NewClient validates the bot token and connects the Telegram API client.
//
// A missing token is a fatal configuration error, no command can run
// without it.
func NewClient(cfg config.TelegramConfig, log *slog.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram.token is required (set BOT_TOKEN)")
	}

	if log == nil {
		log = slog.Default()
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return &Client{
		bot: bot,
		log: log.With("component", "channel.telegram"),
	}, nil
}

// Send delivers one text reply to the given chat.
func (c *Client) Send(ctx context.Context, chatID string, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(id), text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

// Adapter runs Telegram long polling and forwards messages through the
// shared channel handler, for deployments without a public webhook URL.
type Adapter struct {
	client    *Client
	allowFrom map[string]struct{}
	log       *slog.Logger
}

// NewAdapter validates Telegram configuration and constructs an adapter
// instance.
func NewAdapter(cfg config.TelegramConfig, log *slog.Logger) (*Adapter, error) {
	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client:    client,
		allowFrom: allowFromSet(cfg.AllowFrom),
		log:       client.log,
	}, nil
}

// Name returns the channel identifier used in message metadata and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run starts Telegram long polling and handles each message-bearing update.
//
// Updates without a message are skipped without a reply. Every handled
// message produces exactly one send attempt; send failures are logged and
// never retried.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	updates, err := a.client.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	a.log.Info("Telegram channel started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil
				}
				return errors.New("telegram updates channel closed")
			}

			message := update.Message
			if message == nil {
				continue
			}

			senderID := ""
			if message.From != nil {
				senderID = strconv.FormatInt(message.From.ID, 10)
			}
			if !a.senderAllowed(senderID) {
				a.log.Debug("Ignoring message from unauthorized sender", "sender_id", senderID)
				continue
			}

			chatID := strconv.FormatInt(message.Chat.ID, 10)
			inbound := bus.InboundMessage{
				Channel:  channelName,
				SenderID: senderID,
				ChatID:   chatID,
				Content:  message.Text,
				Metadata: map[string]string{
					"update_id": strconv.Itoa(update.UpdateID),
				},
			}
			a.log.Info("Received message", "chat_id", chatID, "sender_id", senderID, "content", previewText(message.Text))

			stopTyping := a.startTypingIndicator(ctx, message.Chat.ID)
			outbound, err := handler(ctx, inbound)
			stopTyping()
			if err != nil {
				a.log.Error("Failed to process inbound message", "error", err)
				continue
			}

			if strings.TrimSpace(outbound.Content) == "" {
				continue
			}
			a.log.Info("Sending reply", "chat_id", chatID, "content", previewText(outbound.Content))

			if err := a.client.Send(ctx, outbound.ChatID, outbound.Content); err != nil {
				a.log.Error("Failed to send telegram message", "error", err)
			}
		}
	}
}

// senderAllowed checks whether a sender is permitted by allow_from config.
//
// When no allow list is configured, all senders are accepted.
func (a *Adapter) senderAllowed(senderID string) bool {
	if len(a.allowFrom) == 0 {
		return true
	}

	_, ok := a.allowFrom[strings.TrimSpace(senderID)]
	return ok
}

// allowFromSet normalizes allow_from values into a lookup set.
func allowFromSet(allowFrom []string) map[string]struct{} {
	if len(allowFrom) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(allowFrom))
	for _, value := range allowFrom {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	if len(allowed) == 0 {
		return nil
	}

	return allowed
}

// parseChatID converts the transport-neutral chat id back to Telegram's
// numeric form.
func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	return id, nil
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}

// startTypingIndicator sends an initial typing action and refreshes it
// periodically until the returned cancel function is called, covering the
// chart lookup latency.
func (a *Adapter) startTypingIndicator(ctx context.Context, chatID int64) context.CancelFunc {
	typingCtx, cancel := context.WithCancel(ctx)

	sendTyping := func() {
		if err := a.client.bot.SendChatAction(typingCtx, tu.ChatAction(tu.ID(chatID), telego.ChatActionTyping)); err != nil && typingCtx.Err() == nil {
			a.log.Debug("Failed to send typing indicator", "chat_id", chatID, "error", err)
		}
	}

	sendTyping()

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				sendTyping()
			}
		}
	}()

	return cancel
}
