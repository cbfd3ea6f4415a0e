package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"savesignal/docs"
	"savesignal/internal/app"
	handlers "savesignal/internal/http/handler"
	"savesignal/internal/http/middleware"
	"savesignal/internal/otel"
)

const shutdownTimeout = 10 * time.Second

// @title savesignal API
// @version 1.0
// @BasePath /
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the records HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			shutdownTracing, err := otel.Init(ctx, logger)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			server, err := newServer(a)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				addr := ":" + cfg.Port
				logger.Info("http_server_starting", zap.String("addr", addr))
				errCh <- server.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("http_server_stopping")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return <-errCh
		},
	}
}

func newServer(a *app.App) (*fiber.App, error) {
	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(a.Logger),
	})

	prom, err := middleware.NewPrometheusMiddleware(a.Registry)
	if err != nil {
		return nil, err
	}

	// otelfiber opens the span that RequestID annotates.
	server.Use(otelfiber.Middleware())
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(a.Logger))
	server.Use(prom.Handler())

	handlers.RegisterRoutes(server, a.DB, a.Records, a.Registry)

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		// SwaggerInfo is global; header values must not alias the request buffer.
		scheme := utils.CopyString(c.Protocol())
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = utils.CopyString(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = utils.CopyString(c.Get("Host"))
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return server, nil
}
