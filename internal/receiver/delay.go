// Package receiver holds the signal receivers wired by the CLI and server.
package receiver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"savesignal/internal/logging"
	"savesignal/internal/model"
	"savesignal/internal/signal"
)

// Delay simulates work inside a receiver: it logs the instance name, blocks
// for d, then logs completion. Because dispatch is synchronous the sender
// blocks for the same time. Cancellation of ctx ends the wait early and is
// returned as the receiver error.
func Delay(logger *zap.Logger, d time.Duration) signal.Receiver {
	return func(ctx context.Context, ev signal.Event) error {
		name := instanceName(ev.Instance)
		logger := logging.ForContext(ctx, logger)
		logger.Info("signal received",
			zap.String("signal", ev.Signal),
			zap.String("sender", ev.Sender),
			zap.String("name", name),
			zap.Bool("created", ev.Created),
		)

		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			logger.Warn("signal handler interrupted", zap.String("name", name), zap.Error(ctx.Err()))
			return ctx.Err()
		case <-timer.C:
		}

		logger.Info("signal handler finished", zap.String("name", name), zap.Duration("delay", d))
		return nil
	}
}

func instanceName(v any) string {
	switch inst := v.(type) {
	case *model.Record:
		return inst.Name
	case model.Record:
		return inst.Name
	case nil:
		return ""
	default:
		return fmt.Sprint(inst)
	}
}
