package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"savesignal/internal/model"
	"savesignal/internal/repository"
	"savesignal/internal/signal"
)

const tracerName = "savesignal/internal/service"

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("record not found")
	// ErrSignal marks a failure raised by a signal receiver.
	ErrSignal = errors.New("signal receiver failed")
)

// RecordListResult is the service-level DTO for paginated records.
type RecordListResult struct {
	Items []model.Record `json:"data"`
	Total int            `json:"total"`
}

// RecordService defines the use cases for records. Writes send the lifecycle
// signals of the injected signal.Set synchronously.
type RecordService interface {
	// Create validates and stores a record named name. post_save receivers run
	// before Create returns; if one fails the row stays stored and the error
	// wraps ErrSignal.
	Create(ctx context.Context, name string) (*model.Record, error)

	// List returns records using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*RecordListResult, error)

	// Get returns a single record by its ID.
	Get(ctx context.Context, id string) (*model.Record, error)

	// Delete removes a record by ID, sending pre_delete and post_delete. A
	// pre_delete error keeps the row; post_delete reaches every receiver and
	// their errors are joined under ErrSignal.
	Delete(ctx context.Context, id string) error
}

type recordService struct {
	repo    repository.RecordRepository
	signals *signal.Set
	now     func() time.Time
}

// NewRecordService constructs a new RecordService.
func NewRecordService(repo repository.RecordRepository, signals *signal.Set) RecordService {
	return &recordService{
		repo:    repo,
		signals: signals,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *recordService) Create(ctx context.Context, name string) (*model.Record, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "record.create")
	defer span.End()

	rec := &model.Record{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := rec.Validate(); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("record.id", rec.ID))

	if _, err := s.signals.PreSave.Send(ctx, signal.Event{Sender: model.RecordSender, Instance: rec, Created: true}); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrSignal, err))
	}

	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fail(span, fmt.Errorf("db save failed: %w", err))
	}

	if _, err := s.signals.PostSave.Send(ctx, signal.Event{Sender: model.RecordSender, Instance: stored, Created: true}); err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrSignal, err))
	}
	return stored, nil
}

// List returns paginated records without exposing repository types.
func (s *recordService) List(ctx context.Context, limit, offset int) (*RecordListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RecordListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *recordService) Get(ctx context.Context, id string) (*model.Record, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *recordService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "record.delete", trace.WithAttributes(attribute.String("record.id", id)))
	defer span.End()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return fail(span, err)
	}

	ev := signal.Event{Sender: model.RecordSender, Instance: rec}
	if _, err := s.signals.PreDelete.Send(ctx, ev); err != nil {
		return fail(span, fmt.Errorf("%w: %w", ErrSignal, err))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fail(span, err)
	}
	// The row is gone: every cleanup receiver gets its call even if one fails.
	var errs []error
	for _, r := range s.signals.PostDelete.SendRobust(ctx, ev) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("receiver %s: %w", r.UID, r.Err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fail(span, fmt.Errorf("%w: %w", ErrSignal, err))
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
