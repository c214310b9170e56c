package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	redisclient "github.com/auctionlab/bidworker/internal/infra/redis"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue-dead",
	Short: "Move dead-lettered jobs back onto the work queue",
	Run:   runRequeue,
}

func init() {
	rootCmd.AddCommand(requeueCmd)
}

func runRequeue(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	moved, err := client.RequeueDead(context.Background())
	if err != nil {
		slog.Error("Requeue failed", "moved", moved, "error", err)
		os.Exit(1)
	}
	slog.Info("Requeued dead-lettered jobs", "moved", moved)
}
