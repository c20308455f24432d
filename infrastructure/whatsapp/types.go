package whatsapp

// Meta-standard WhatsApp Cloud API webhook types.

// WebhookPayload is the top-level webhook delivery from Meta.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds either inbound messages or status receipts.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata about the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

// Message represents an incoming WhatsApp message of any type.
type Message struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Image       *MediaContent       `json:"image,omitempty"`
	Video       *MediaContent       `json:"video,omitempty"`
	Audio       *MediaContent       `json:"audio,omitempty"`
	Document    *DocumentContent    `json:"document,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

type MediaContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type DocumentContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type InteractiveContent struct {
	Type        string        `json:"type"`
	ButtonReply *OptionReply  `json:"button_reply,omitempty"`
	ListReply   *OptionReply  `json:"list_reply,omitempty"`
}

type OptionReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Status represents a message delivery status update.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// --- Graph API send payloads ---

type sendTextRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             sendTextBody `json:"text"`
}

type sendTextBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendTemplateRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name       string       `json:"name"`
	Language   templateLang `json:"language"`
	Components []any        `json:"components,omitempty"`
}

type templateLang struct {
	Code string `json:"code"`
}

type sendInteractiveRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Interactive      interactiveBody `json:"interactive"`
}

type interactiveBody struct {
	Type   string            `json:"type"`
	Body   interactiveText   `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveText struct {
	Text string `json:"text"`
}

type interactiveAction struct {
	Buttons []replyButton `json:"buttons"`
}

type replyButton struct {
	Type  string           `json:"type"`
	Reply replyButtonReply `json:"reply"`
}

type replyButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type markReadRequest struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// SendResponse is the Graph API reply to any /messages POST.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}
