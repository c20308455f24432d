package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	"github.com/hansai/wa-bridge/infrastructure/openclaw"
	"github.com/hansai/wa-bridge/infrastructure/whatsapp"
	"github.com/hansai/wa-bridge/pkg/msgworker"
	"github.com/hansai/wa-bridge/ui/rest"
	"github.com/hansai/wa-bridge/ui/rest/middleware"
	"github.com/hansai/wa-bridge/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the webhook relay over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	app := fiber.New(fiber.Config{
		Network:               "tcp",
		AppName:               "WhatsApp Webhook Handler",
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	app.Use(middleware.Recovery())

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	// One pooled outbound client shared by every component; closed on
	// shutdown.
	httpClient := &http.Client{Timeout: cfg.OpenClaw.Timeout}

	senderClient := whatsapp.NewClient(cfg, httpClient)
	gatewayClient := openclaw.NewClient(cfg, httpClient)
	relayService := usecase.NewRelayService(cfg, gatewayClient, senderClient)
	healthService := usecase.NewHealthService(cfg)

	// Warm the relay pool before the first webhook delivery lands.
	msgworker.GetGlobalPool()

	apiGroup := app.Group(cfg.App.BasePath)
	rest.InitRestWebhook(apiGroup, cfg, relayService)
	rest.InitRestMessage(apiGroup, cfg, senderClient)
	rest.InitRestHealth(apiGroup, cfg, healthService)

	// Graceful shutdown handler. Shutdown() unblocks Listen below, so the
	// main goroutine must wait on shutdownDone or the pool drain and
	// client close get killed mid-flight when restServer returns.
	shutdownDone := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		msgworker.StopGlobalPool()
		httpClient.CloseIdleConnections()
		close(shutdownDone)
	}()

	logrus.Infof("[REST] WhatsApp Webhook Handler %s listening on :%s", cfg.App.Version, cfg.App.Port)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}

	<-shutdownDone
	logrus.Info("[REST] Shutdown complete")
}
