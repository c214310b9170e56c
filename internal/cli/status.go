package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	redisclient "github.com/auctionlab/bidworker/internal/infra/redis"
	"github.com/auctionlab/bidworker/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue depth, dead letters and recovery-store size",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	client, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	depth, err := client.Depth(ctx)
	if err != nil {
		slog.Error("Failed to read queue depth", "error", err)
		os.Exit(1)
	}
	dead, err := client.DeadDepth(ctx)
	if err != nil {
		slog.Error("Failed to read dead-letter depth", "error", err)
		os.Exit(1)
	}

	pending := -1
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = db.Close()
		}()

		repo := postgres.NewPendingJobRepo(db, cfg.Worker.PendingTable)
		if err := repo.EnsureTable(ctx); err == nil {
			if n, err := repo.Count(ctx); err == nil {
				pending = n
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "QUEUED\tDEAD\tPENDING")
	if pending >= 0 {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\n", depth, dead, pending)
	} else {
		_, _ = fmt.Fprintf(w, "%d\t%d\t-\n", depth, dead)
	}
	_ = w.Flush()
}
