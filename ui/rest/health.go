package rest

import (
	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainHealth "github.com/hansai/wa-bridge/domains/health"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Cfg     *coreconfig.Config
	Service domainHealth.IHealthUsecase
}

func InitRestHealth(app fiber.Router, cfg *coreconfig.Config, service domainHealth.IHealthUsecase) Health {
	handler := Health{Cfg: cfg, Service: service}

	app.Get("/", handler.Root)
	app.Get("/health", handler.GetHealth)
	app.Get("/status", handler.GetStatus)

	return handler
}

func (handler *Health) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        "WhatsApp Webhook Handler",
		"version":     handler.Cfg.App.Version,
		"description": "Meta WhatsApp Cloud API integration for the OpenClaw gateway",
		"endpoints": fiber.Map{
			"health":          "/health",
			"status":          "/status",
			"webhook_verify":  "/webhook/whatsapp (GET)",
			"webhook_receive": "/webhook/whatsapp (POST)",
			"send_message":    "/send",
		},
	})
}

func (handler *Health) GetHealth(c *fiber.Ctx) error {
	return c.JSON(handler.Service.GetHealth(c.UserContext()))
}

func (handler *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(handler.Service.GetStatus(c.UserContext()))
}
