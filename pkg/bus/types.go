package bus

// InboundMessage is one user message received from a transport.
type InboundMessage struct {
	Channel  string            `json:"channel"`
	SenderID string            `json:"sender_id,omitempty"`
	ChatID   string            `json:"chat_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage is the reply produced for one inbound message.
//
// An empty Content means no reply is sent for the inbound event.
type OutboundMessage struct {
	Channel  string            `json:"channel"`
	ChatID   string            `json:"chat_id"`
	Content  string            `json:"content"`
	Error    string            `json:"error,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
