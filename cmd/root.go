package cmd

import (
	"os"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	"github.com/hansai/wa-bridge/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagPort      string
	flagDebug     bool
	flagWorkers   int
	flagQueueSize int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wa-bridge",
	Short: "WhatsApp Cloud API to OpenClaw relay",
	Long: `Relays inbound WhatsApp Cloud API webhook events to the OpenClaw
gateway and posts generated replies back to the originating user.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8003",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"enable debug logging --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().IntVarP(
		&flagWorkers,
		"message-workers", "",
		0,
		"number of concurrent relay workers --message-workers <number> | example: --message-workers=30 (default: 20)",
	)
	rootCmd.PersistentFlags().IntVarP(
		&flagQueueSize,
		"message-queue-size", "",
		0,
		"queue size per relay worker --message-queue-size <number> | example: --message-queue-size=1500 (default: 1000)",
	)
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Flag overrides
	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if flagWorkers > 0 {
		cfg.WorkerPool.Size = flagWorkers
	}
	if flagQueueSize > 0 {
		cfg.WorkerPool.QueueSize = flagQueueSize
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	for _, warning := range cfg.Validate() {
		logrus.Warnf("[CONFIG] %s", warning)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
