package rest

import (
	"context"
	"encoding/json"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/infrastructure/whatsapp"
	pkgError "github.com/hansai/wa-bridge/pkg/error"
	"github.com/hansai/wa-bridge/pkg/msgworker"
	"github.com/hansai/wa-bridge/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Webhook struct {
	Cfg     *coreconfig.Config
	Service domainMessage.IRelayUsecase

	// dispatch is swappable in tests; defaults to the global pool.
	dispatch func(job msgworker.RelayJob) bool
}

func InitRestWebhook(app fiber.Router, cfg *coreconfig.Config, service domainMessage.IRelayUsecase) *Webhook {
	handler := &Webhook{
		Cfg:     cfg,
		Service: service,
		dispatch: func(job msgworker.RelayJob) bool {
			return msgworker.GetGlobalPool().TryDispatch(job)
		},
	}

	app.Get("/webhook/whatsapp", handler.Verify)
	app.Post("/webhook/whatsapp", handler.Ingest)

	return handler
}

// Verify answers Meta's subscription handshake. The challenge is echoed
// byte-for-byte only on an exact mode+token match.
func (h *Webhook) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.Cfg.Whatsapp.VerifyToken {
		logrus.Warnf("[WEBHOOK] Verification failed: mode=%s", mode)
		panic(pkgError.AuthError("webhook verification failed"))
	}

	logrus.Info("[WEBHOOK] Verified successfully")
	return c.Status(fiber.StatusOK).SendString(challenge)
}

// Ingest accepts a webhook delivery, dispatches each recognized message
// to the relay pool and acknowledges immediately. The response never
// waits on the downstream round trip.
func (h *Webhook) Ingest(c *fiber.Ctx) error {
	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		logrus.WithError(err).Error("[WEBHOOK] Invalid JSON in webhook payload")
		utils.PanicIfNeeded(pkgError.BadRequestError("invalid JSON payload"))
	}

	if payload.Object != "whatsapp_business_account" {
		logrus.Debugf("[WEBHOOK] Ignoring non-whatsapp object: %s", payload.Object)
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	value := firstChangeValue(payload)
	if value == nil {
		logrus.Warn("[WEBHOOK] Payload had no entry/changes; nothing to process")
		return c.JSON(fiber.Map{"status": "error"})
	}

	switch {
	case len(value.Messages) > 0:
		for _, msg := range value.Messages {
			canonical, ok := canonicalFromMessage(msg)
			if !ok {
				continue
			}
			h.dispatchMessage(canonical)
		}
	case len(value.Statuses) > 0:
		// Delivery/read receipts are consumed for observability only.
		for _, status := range value.Statuses {
			logrus.Debugf("[WEBHOOK] Message status: %s for %s", status.Status, status.RecipientID)
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Webhook) dispatchMessage(canonical domainMessage.CanonicalMessage) {
	msg := canonical
	ok := h.dispatch(msgworker.RelayJob{
		ChatID: msg.Sender,
		Handler: func(ctx context.Context) error {
			return h.Service.Relay(ctx, msg)
		},
	})
	if !ok {
		logrus.Warnf("[WEBHOOK] Relay queue rejected message %s from %s", msg.MessageID, msg.Sender)
	}
}

// firstChangeValue extracts entry[0].changes[0].value; partial or
// unexpected shapes yield nil instead of an error.
func firstChangeValue(payload whatsapp.WebhookPayload) *whatsapp.ChangeValue {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil
	}
	return &payload.Entry[0].Changes[0].Value
}
