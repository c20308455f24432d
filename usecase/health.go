package usecase

import (
	"context"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainHealth "github.com/hansai/wa-bridge/domains/health"
	"github.com/hansai/wa-bridge/pkg/msgworker"
	"github.com/google/uuid"
)

type serviceHealth struct {
	cfg        *coreconfig.Config
	instanceID string
}

func NewHealthService(cfg *coreconfig.Config) domainHealth.IHealthUsecase {
	return &serviceHealth{
		cfg:        cfg,
		instanceID: uuid.NewString(),
	}
}

func (service *serviceHealth) GetHealth(_ context.Context) domainHealth.Status {
	return domainHealth.Status{
		Status:             "healthy",
		Service:            service.cfg.App.ServiceName,
		WhatsappConfigured: service.cfg.WhatsappConfigured(),
		OpenClawConfigured: service.cfg.OpenClawConfigured(),
	}
}

func (service *serviceHealth) GetStatus(_ context.Context) domainHealth.ExtendedStatus {
	return domainHealth.ExtendedStatus{
		Status:             "running",
		Version:            service.cfg.App.Version,
		InstanceID:         service.instanceID,
		WebhookConfigured:  service.cfg.Whatsapp.VerifyToken != "" && service.cfg.Whatsapp.PhoneID != "",
		OpenClawConfigured: service.cfg.OpenClawConfigured(),
		Workers:            msgworker.GetGlobalStats(),
	}
}
