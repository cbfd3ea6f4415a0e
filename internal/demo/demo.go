// Package demo runs the single-shot save scenario and reports how the
// post_save handler was executed relative to the save call.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"savesignal/internal/model"
	"savesignal/internal/receiver"
	"savesignal/internal/service"
)

var ErrNoObservation = errors.New("post_save handler did not run")

// Report describes one demo run.
type Report struct {
	Record               *model.Record
	TraceID              trace.TraceID
	CallerSpanID         trace.SpanID
	ReceiverTraceID      trace.TraceID
	ReceiverParentSpanID trace.SpanID
	// HandlerRan is how long the post_save handler itself took.
	HandlerRan           time.Duration
	// Blocked is how long Create took; it covers HandlerRan.
	Blocked              time.Duration
}

// SameTrace reports whether the handler span belongs to the caller's trace.
func (r Report) SameTrace() bool {
	return r.TraceID.IsValid() && r.TraceID == r.ReceiverTraceID
}

// Run creates one record named name and inspects probe for the handler call
// that the save triggered. A handler that did not complete while Create was
// running leaves no observation, which is reported as ErrNoObservation.
func Run(ctx context.Context, records service.RecordService, probe *receiver.Probe, name string) (*Report, error) {
	ctx, span := otel.Tracer("savesignal/internal/demo").Start(ctx, "demo.run")
	defer span.End()

	before := probe.Count()
	start := time.Now()
	rec, err := records.Create(ctx, name)
	returned := time.Now()
	if err != nil {
		return nil, err
	}
	obs, ok := probe.Last()
	if !ok || probe.Count() == before {
		return nil, ErrNoObservation
	}

	return &Report{
		Record:               rec,
		TraceID:              span.SpanContext().TraceID(),
		CallerSpanID:         span.SpanContext().SpanID(),
		ReceiverTraceID:      obs.TraceID,
		ReceiverParentSpanID: obs.ParentSpanID,
		HandlerRan:           obs.Finished.Sub(obs.Started),
		Blocked:              returned.Sub(start),
	}, nil
}

// Print writes the report in the demo's console format.
func (r *Report) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Object created\n"+
			"Record ID: %s\n"+
			"Caller trace ID: %s\n"+
			"Caller span ID: %s\n"+
			"Receiver trace ID: %s\n"+
			"Receiver parent span ID: %s\n"+
			"Receiver ran in caller trace: %t\n"+
			"Receiver ran for: %s\n"+
			"Save blocked for: %s\n",
		r.Record.ID,
		r.TraceID, r.CallerSpanID,
		r.ReceiverTraceID, r.ReceiverParentSpanID,
		r.SameTrace(),
		r.HandlerRan.Round(time.Millisecond),
		r.Blocked.Round(time.Millisecond),
	)
	return err
}
