package commands

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"savesignal/internal/config"
	"savesignal/internal/logging"
)

var (
	cfg      *config.AppConfig
	logger   *zap.Logger
	logLevel string
)

// Execute builds the command tree and runs it until SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "savesignal",
		Short:        "Records with synchronous post_save receivers",
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration from environment variables (.env auto-loaded if present)
			cfg = config.Load()
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			l, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(demoCmd(), serveCmd(), migrateCmd())
	return root
}
