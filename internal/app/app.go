// Package app wires configuration, storage, signals and receivers into the
// record service shared by the demo and serve commands.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"savesignal/internal/config"
	"savesignal/internal/database"
	"savesignal/internal/database/migration"
	"savesignal/internal/metrics"
	"savesignal/internal/model"
	"savesignal/internal/receiver"
	"savesignal/internal/repository"
	"savesignal/internal/repository/postgres"
	"savesignal/internal/repository/sqlite"
	"savesignal/internal/service"
	"savesignal/internal/signal"
	"savesignal/internal/storage"
)

var newStorage = func(ctx context.Context, cfg config.MinIOConfig) (storage.Store, error) {
	return storage.NewMinIO(ctx, cfg)
}

// App holds the long-lived dependencies of one process.
type App struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	DB       *sql.DB
	Dialect  database.Dialect
	Registry *prometheus.Registry
	Signals  *signal.Set
	Records  service.RecordService
	// Probe observes every call of the post_save handler.
	Probe *receiver.Probe

	connections []connection
}

type connection struct {
	signal *signal.Signal
	uid    string
}

// New opens the database, migrates it and connects the receivers:
//   - the delay handler on post_save for model.Record under cfg.Signal.DispatchUID;
//   - the snapshot receiver on post_save and post_delete when MinIO is configured.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	db, dialect, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Dialect:  dialect,
		Registry: prometheus.NewRegistry(),
		Signals:  signal.NewSet(),
		Probe:    receiver.NewProbe(),
	}
	if err := a.connectReceivers(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	a.Records = service.NewRecordService(newRepository(db, dialect), a.Signals)
	return a, nil
}

func newRepository(db *sql.DB, dialect database.Dialect) repository.RecordRepository {
	if dialect == database.DialectPostgres {
		return postgres.NewRecordPostgres(db)
	}
	return sqlite.NewRecordSQLite(db)
}

func (a *App) connect(sig *signal.Signal, r signal.Receiver, uid string) {
	a.connections = append(a.connections, connection{
		signal: sig,
		uid:    sig.Connect(r, signal.WithSender(model.RecordSender), signal.WithDispatchUID(uid)),
	})
}

func (a *App) connectReceivers(ctx context.Context) error {
	sm, err := metrics.NewSignalMetrics(a.Registry)
	if err != nil {
		return fmt.Errorf("register signal metrics: %w", err)
	}

	handler := a.Probe.Wrap(receiver.Delay(a.Logger, a.Config.Signal.HandlerDelay))
	a.connect(a.Signals.PostSave, sm.Instrument(handler), a.Config.Signal.DispatchUID)

	if a.Config.MinIO.Endpoint != "" {
		store, err := newStorage(ctx, a.Config.MinIO)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		snapshot := sm.Instrument(receiver.Snapshot(store, a.Logger))
		a.connect(a.Signals.PostSave, snapshot, "record_snapshot_save")
		a.connect(a.Signals.PostDelete, snapshot, "record_snapshot_delete")
	}

	a.Logger.Info("signal receivers connected",
		zap.String("sender", model.RecordSender),
		zap.Bool("post_save", a.Signals.PostSave.HasListeners(model.RecordSender)),
		zap.Bool("post_delete", a.Signals.PostDelete.HasListeners(model.RecordSender)),
		zap.Int("receivers", len(a.connections)),
	)
	return nil
}

// Close disconnects the receivers, so no dispatch reaches a closed
// database, then flushes the logger and releases the database. Sync errors
// are ignored: zap reports EINVAL when the sink is a terminal.
func (a *App) Close() error {
	for _, c := range a.connections {
		c.signal.Disconnect(c.uid, signal.WithSender(model.RecordSender))
	}
	a.connections = nil
	_ = a.Logger.Sync()
	return a.DB.Close()
}
