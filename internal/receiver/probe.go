package receiver

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"savesignal/internal/signal"
)

// Observation is what a Probe saw during one receiver call.
type Observation struct {
	Signal       string
	TraceID      trace.TraceID
	SpanID       trace.SpanID
	ParentSpanID trace.SpanID
	Started      time.Time
	Finished     time.Time
}

// Probe wraps a receiver and records the span lineage and timing of each
// call. The demo uses it to show that the receiver ran inside the save.
type Probe struct {
	mu   sync.Mutex
	seen []Observation
}

func NewProbe() *Probe { return &Probe{} }

// Wrap returns a receiver that records an Observation around next.
func (p *Probe) Wrap(next signal.Receiver) signal.Receiver {
	return func(ctx context.Context, ev signal.Event) error {
		span := trace.SpanFromContext(ctx)
		obs := Observation{
			Signal:  ev.Signal,
			TraceID: span.SpanContext().TraceID(),
			SpanID:  span.SpanContext().SpanID(),
			Started: time.Now(),
		}
		// SDK spans expose their parent; no-op spans do not.
		if ps, ok := span.(interface{ Parent() trace.SpanContext }); ok {
			obs.ParentSpanID = ps.Parent().SpanID()
		}

		err := next(ctx, ev)

		obs.Finished = time.Now()
		p.mu.Lock()
		p.seen = append(p.seen, obs)
		p.mu.Unlock()
		return err
	}
}

// Last returns the most recent observation.
func (p *Probe) Last() (Observation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.seen) == 0 {
		return Observation{}, false
	}
	return p.seen[len(p.seen)-1], true
}

// Count returns the number of recorded calls.
func (p *Probe) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}
