package commands

import (
	"time"

	"github.com/spf13/cobra"

	"savesignal/internal/app"
	"savesignal/internal/demo"
	"savesignal/internal/otel"
)

func demoCmd() *cobra.Command {
	var (
		name  string
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create one record and show that its post_save handler ran inside the save",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("delay") {
				cfg.Signal.HandlerDelay = delay
			}

			shutdown, err := otel.InitLocal(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(ctx) }()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := demo.Run(ctx, a.Records, a.Probe, name)
			if err != nil {
				return err
			}
			return report.Print(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&name, "name", "Test", "name of the record to create")
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "how long the post_save handler sleeps; overrides SIGNAL_HANDLER_DELAY")
	return cmd
}
