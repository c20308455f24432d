package openclaw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	pkgError "github.com/hansai/wa-bridge/pkg/error"
	"github.com/sirupsen/logrus"
)

// forwardRequest is the canonical gateway schema: the channel/from/message
// shape the OpenClaw webhook endpoint consumes.
type forwardRequest struct {
	Channel   string            `json:"channel"`
	From      string            `json:"from"`
	Message   string            `json:"message"`
	MessageID string            `json:"message_id,omitempty"`
	Metadata  map[string]string `json:"metadata"`
}

// GatewayReply is the gateway's response body. Either a single response
// string or a messages array may be present.
type GatewayReply struct {
	Response string   `json:"response,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// Texts returns the reply texts in send order, empty when the gateway
// had nothing to say.
func (r *GatewayReply) Texts() []string {
	if r == nil {
		return nil
	}
	if strings.TrimSpace(r.Response) != "" {
		return []string{r.Response}
	}
	var out []string
	for _, m := range r.Messages {
		if strings.TrimSpace(m) != "" {
			out = append(out, m)
		}
	}
	return out
}

// Client talks to the OpenClaw gateway. Safe for concurrent use.
type Client struct {
	cfg        *coreconfig.Config
	httpClient *http.Client
}

func NewClient(cfg *coreconfig.Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Forward posts one canonical message to the gateway and returns its
// reply. One POST, bounded by MessageTimeout, no retry.
func (c *Client) Forward(ctx context.Context, msg domainMessage.CanonicalMessage) (*GatewayReply, error) {
	payload := forwardRequest{
		Channel:   "whatsapp",
		From:      msg.Sender,
		Message:   msg.Text,
		MessageID: msg.MessageID,
		Metadata:  msg.Metadata,
	}
	if payload.Metadata == nil {
		payload.Metadata = map[string]string{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgError.GatewayError(fmt.Sprintf("failed to marshal forward body: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.OpenClaw.MessageTimeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.OpenClaw.BaseURL, "/") + "/webhook/whatsapp"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgError.GatewayError(fmt.Sprintf("failed to build gateway request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.OpenClaw.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.OpenClaw.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgError.GatewayError(fmt.Sprintf("gateway request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, pkgError.GatewayError(fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, string(respBody)))
	}

	var reply GatewayReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, pkgError.GatewayError(fmt.Sprintf("failed to decode gateway reply: %v", err))
	}
	return &reply, nil
}

// HealthCheck probes the gateway health endpoint with a short bound.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if !c.cfg.OpenClawConfigured() {
		return false
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := strings.TrimRight(c.cfg.OpenClaw.BaseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Debug("[OPENCLAW] Health probe failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
