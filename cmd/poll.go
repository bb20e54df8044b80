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
	"chartbot/pkg/logger"

	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run long-polling mode",
	Long:  "Runs ChartBot against the Telegram long-polling API, for deployments without a public webhook URL.",
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
		log := slog.Default().With("component", "cmd.poll")

		adapter, err := telegram.NewAdapter(cfg.Telegram, log)
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

		log.Info("Long polling started", "channel", adapter.Name())
		if err := adapter.Run(runCtx, dispatcher.Handle); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Long polling failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)
}
