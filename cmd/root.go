package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-api/internal/config"
	"github.com/sells-group/lead-api/internal/service"
	"github.com/sells-group/lead-api/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lead-api",
	Short: "Query and aggregation service for chat-analysis lead documents",
	Long:  "Serves a read-only HTTP API and CLI over MongoDB lead documents: list, filter, and paginate analysed leads, resolve inconsistently-typed session identifiers, and report aggregate qualification stats.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openService connects to the store and returns the query service plus
// a cleanup func. Callers must invoke cleanup before exit.
func openService(ctx context.Context) (*service.Service, func(), error) {
	st, err := store.Open(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := st.Close(context.Background()); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
	return service.New(st, cfg.Mongo.Database, cfg.Mongo.Collection), cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
