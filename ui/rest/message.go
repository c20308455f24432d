package rest

import (
	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/validations"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Message struct {
	Cfg     *coreconfig.Config
	Service domainMessage.ISenderUsecase
}

func InitRestMessage(app fiber.Router, cfg *coreconfig.Config, service domainMessage.ISenderUsecase) Message {
	handler := Message{Cfg: cfg, Service: service}

	app.Post("/send", handler.Send)
	app.Post("/send/interactive", handler.SendInteractive)
	app.Post("/mark-read", handler.MarkAsRead)

	return handler
}

// Send delivers a text or template message. Only this direct API surface
// sees send failures; the background relay swallows them.
func (handler *Message) Send(c *fiber.Ctx) error {
	var request domainMessage.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(domainMessage.SendResult{
			Success: false,
			Error:   "invalid request body",
		})
	}

	if err := validations.ValidateSendMessage(c.UserContext(), request, handler.Cfg.Whatsapp.MaxMessageLength); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(domainMessage.SendResult{
			Success: false,
			Error:   err.Error(),
		})
	}

	var result domainMessage.SendResult
	if request.Type == "template" {
		result = handler.Service.SendTemplate(c.UserContext(), request.To, request.Message, request.Components, "")
	} else {
		result = handler.Service.SendText(c.UserContext(), request.To, request.Message)
	}

	if !result.Success {
		logrus.Errorf("[REST] Send to %s failed: %s", request.To, result.Error)
	}
	return c.JSON(result)
}

// SendInteractive delivers a button message; the provider limit of 3
// buttons is enforced by the sender.
func (handler *Message) SendInteractive(c *fiber.Ctx) error {
	var request domainMessage.InteractiveMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(domainMessage.SendResult{
			Success: false,
			Error:   "invalid request body",
		})
	}

	if err := validations.ValidateSendInteractive(c.UserContext(), request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(domainMessage.SendResult{
			Success: false,
			Error:   err.Error(),
		})
	}

	result := handler.Service.SendInteractiveButtons(c.UserContext(), request.To, request.Text, request.Buttons)
	return c.JSON(result)
}

// MarkAsRead is fire-and-forget; a provider failure is logged but the
// caller always gets success.
func (handler *Message) MarkAsRead(c *fiber.Ctx) error {
	request := domainMessage.MarkAsReadRequest{MessageID: c.Query("message_id")}
	if request.MessageID == "" {
		_ = c.BodyParser(&request)
	}

	if err := validations.ValidateMarkAsRead(c.UserContext(), request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	handler.Service.MarkAsRead(c.UserContext(), request.MessageID)
	return c.JSON(fiber.Map{"success": true})
}
