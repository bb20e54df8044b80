package channel

import (
	"context"

	"chartbot/pkg/bus"
)

// Handler processes one inbound message and returns the outbound reply.
type Handler func(context.Context, bus.InboundMessage) (bus.OutboundMessage, error)

// Adapter bridges one external transport (for example Telegram long
// polling) into the bot.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}

// Sender delivers one text reply to a chat. Delivery is best effort; the
// caller logs failures and never retries.
type Sender interface {
	Send(ctx context.Context, chatID string, text string) error
}
