package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/pkg/utils"
	"github.com/sirupsen/logrus"
)

const maxButtons = 3

// Client talks to the WhatsApp Cloud API send endpoint. Safe for
// concurrent use; the http.Client is shared and owned by the process.
type Client struct {
	cfg        *coreconfig.Config
	httpClient *http.Client
}

func NewClient(cfg *coreconfig.Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.cfg.Whatsapp.GraphBaseURL, c.cfg.Whatsapp.APIVersion, c.cfg.Whatsapp.PhoneID)
}

// SendText sends a plain text message and returns the provider-assigned
// message id on success.
func (c *Client) SendText(ctx context.Context, to string, text string) domainMessage.SendResult {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               utils.NormalizePhone(to),
		Type:             "text",
		Text:             sendTextBody{Body: text, PreviewURL: false},
	}
	return c.postMessage(ctx, payload)
}

// SendTemplate sends a pre-approved template message.
func (c *Client) SendTemplate(ctx context.Context, to string, templateName string, components []any, languageCode string) domainMessage.SendResult {
	if languageCode == "" {
		languageCode = "en"
	}
	payload := sendTemplateRequest{
		MessagingProduct: "whatsapp",
		To:               utils.NormalizePhone(to),
		Type:             "template",
		Template: templateBody{
			Name:       templateName,
			Language:   templateLang{Code: languageCode},
			Components: components,
		},
	}
	return c.postMessage(ctx, payload)
}

// SendInteractiveButtons sends a button message. The provider caps reply
// buttons at 3; extra entries are dropped and missing ids/titles get
// synthesized defaults.
func (c *Client) SendInteractiveButtons(ctx context.Context, to string, text string, buttons []domainMessage.Button) domainMessage.SendResult {
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	replies := make([]replyButton, 0, len(buttons))
	for i, btn := range buttons {
		id := btn.ID
		if id == "" {
			id = fmt.Sprintf("btn_%d", i)
		}
		title := btn.Title
		if title == "" {
			title = fmt.Sprintf("Button %d", i+1)
		}
		replies = append(replies, replyButton{Type: "reply", Reply: replyButtonReply{ID: id, Title: title}})
	}

	payload := sendInteractiveRequest{
		MessagingProduct: "whatsapp",
		To:               utils.NormalizePhone(to),
		Type:             "interactive",
		Interactive: interactiveBody{
			Type:   "button",
			Body:   interactiveText{Text: text},
			Action: interactiveAction{Buttons: replies},
		},
	}
	return c.postMessage(ctx, payload)
}

// MarkAsRead flags a message as read. Fire-and-forget: failure is logged
// only.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) bool {
	payload := markReadRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}

	res := c.postMessage(ctx, payload)
	if !res.Success {
		logrus.Warnf("[WHATSAPP] Failed to mark %s as read: %s", messageID, res.Error)
		return false
	}
	logrus.Debugf("[WHATSAPP] Message %s marked as read", messageID)
	return true
}

func (c *Client) postMessage(ctx context.Context, payload any) domainMessage.SendResult {
	if !c.cfg.WhatsappConfigured() {
		return domainMessage.SendResult{Success: false, Error: "whatsapp credentials not configured"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domainMessage.SendResult{Success: false, Error: fmt.Sprintf("failed to marshal body: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL(), bytes.NewReader(body))
	if err != nil {
		return domainMessage.SendResult{Success: false, Error: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Whatsapp.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("[WHATSAPP] Send request failed")
		return domainMessage.SendResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logrus.Errorf("[WHATSAPP] Send failed: %d - %s", resp.StatusCode, string(respBody))
		return domainMessage.SendResult{Success: false, Error: fmt.Sprintf("whatsapp api returned %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed SendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		logrus.WithError(err).Warn("[WHATSAPP] Send succeeded but response body was not parseable")
		return domainMessage.SendResult{Success: true}
	}

	return domainMessage.SendResult{Success: true, MessageID: extractMessageID(parsed)}
}

// extractMessageID prefers contacts[0].input, falling back to the id in
// messages[0].
func extractMessageID(resp SendResponse) string {
	if len(resp.Contacts) > 0 && resp.Contacts[0].Input != "" {
		return resp.Contacts[0].Input
	}
	if len(resp.Messages) > 0 {
		return resp.Messages[0].ID
	}
	return ""
}
