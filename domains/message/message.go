package message

import "context"

// CanonicalMessage is the normalized internal form of any inbound
// WhatsApp message, reduced to sender, text, id and metadata. It lives
// only for the duration of one dispatch.
type CanonicalMessage struct {
	Sender    string            `json:"from"`
	Text      string            `json:"message"`
	MessageID string            `json:"message_id"`
	Metadata  map[string]string `json:"metadata"`
}

// SendResult is returned to callers of the outbound send operations.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SendMessageRequest struct {
	To         string `json:"to" form:"to"`
	Message    string `json:"message" form:"message"`
	Type       string `json:"type,omitempty" form:"type"` // text (default) or template
	Components []any  `json:"components,omitempty"`
}

type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type InteractiveMessageRequest struct {
	To      string   `json:"to" form:"to"`
	Text    string   `json:"text" form:"text"`
	Buttons []Button `json:"buttons"`
}

type MarkAsReadRequest struct {
	MessageID string `json:"message_id" form:"message_id"`
}

// ISenderUsecase is the WhatsApp Cloud API send surface.
type ISenderUsecase interface {
	SendText(ctx context.Context, to string, text string) SendResult
	SendTemplate(ctx context.Context, to string, templateName string, components []any, languageCode string) SendResult
	SendInteractiveButtons(ctx context.Context, to string, text string, buttons []Button) SendResult
	MarkAsRead(ctx context.Context, messageID string) bool
}

// IRelayUsecase runs one detached gateway round trip for a canonical
// message. Best-effort: failures are terminal for that message.
type IRelayUsecase interface {
	Relay(ctx context.Context, msg CanonicalMessage) error
}
