package health

import "context"

// Status is the exact /health body shape.
type Status struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	WhatsappConfigured bool   `json:"whatsapp_configured"`
	OpenClawConfigured bool   `json:"openclaw_configured"`
}

// ExtendedStatus backs /status with operational detail on top of the
// plain health shape.
type ExtendedStatus struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	InstanceID         string `json:"instance_id"`
	WebhookConfigured  bool   `json:"webhook_configured"`
	OpenClawConfigured bool   `json:"openclaw_configured"`
	Workers            any    `json:"workers,omitempty"`
}

type IHealthUsecase interface {
	GetHealth(ctx context.Context) Status
	GetStatus(ctx context.Context) ExtendedStatus
}
