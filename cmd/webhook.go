package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chartbot/pkg/bot"
	"chartbot/pkg/channel/telegram"
	"chartbot/pkg/charts"
	"chartbot/pkg/config"
	"chartbot/pkg/gateway"
	"chartbot/pkg/logger"

	"github.com/spf13/cobra"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Run webhook server mode",
	Long:  "Runs ChartBot as an HTTP webhook server for Telegram updates, with health and readiness endpoints.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.webhook")

		client, err := telegram.NewClient(cfg.Telegram, log)
		if err != nil {
			log.Error("Telegram configuration invalid", "error", err)
			return
		}

		dispatcher, err := bot.NewDispatcher(charts.NewClient(cfg.Charts), log)
		if err != nil {
			log.Error("Failed to initialize dispatcher", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := gateway.NewService(cfg, client, dispatcher.Handle, log)
		if err != nil {
			log.Error("Failed to initialize webhook service", "error", err)
			return
		}

		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Webhook server failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
}
