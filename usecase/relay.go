package usecase

import (
	"context"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/infrastructure/openclaw"
	pkgError "github.com/hansai/wa-bridge/pkg/error"
	"github.com/sirupsen/logrus"
)

type serviceRelay struct {
	cfg     *coreconfig.Config
	gateway *openclaw.Client
	sender  domainMessage.ISenderUsecase
}

func NewRelayService(cfg *coreconfig.Config, gateway *openclaw.Client, sender domainMessage.ISenderUsecase) domainMessage.IRelayUsecase {
	return &serviceRelay{cfg: cfg, gateway: gateway, sender: sender}
}

// Relay runs one gateway round trip for an inbound message and sends any
// reply back to the originating user. Best-effort: failures are logged
// and terminal for that message, nothing is retried.
func (service *serviceRelay) Relay(ctx context.Context, msg domainMessage.CanonicalMessage) error {
	logrus.Infof("[RELAY] Processing message from %s: %s", msg.Sender, previewText(msg.Text))

	if !service.cfg.OpenClawConfigured() {
		logrus.Warn("[RELAY] OPENCLAW_URL not set, skipping processing")
		return nil
	}

	reply, err := service.gateway.Forward(ctx, msg)
	if err != nil {
		logrus.WithError(err).Errorf("[RELAY] Gateway forward failed for %s", msg.Sender)
		return err
	}

	texts := reply.Texts()
	if len(texts) == 0 {
		logrus.Debugf("[RELAY] Gateway returned no reply for %s", msg.Sender)
		return nil
	}

	for _, text := range texts {
		res := service.sender.SendText(ctx, msg.Sender, text)
		if !res.Success {
			logrus.WithError(pkgError.SendError(res.Error)).Errorf("[RELAY] Failed to deliver reply to %s", msg.Sender)
			continue
		}
		logrus.Infof("[RELAY] Response sent to %s, ID: %s", msg.Sender, res.MessageID)
	}

	return nil
}

// previewText truncates on a rune boundary so multibyte messages do not
// put broken UTF-8 in the logs.
func previewText(s string) string {
	const maxRunes = 50
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
