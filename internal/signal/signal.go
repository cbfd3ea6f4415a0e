// Package signal dispatches model lifecycle notifications to registered
// receivers.
//
// Dispatch is synchronous: Send and SendRobust call every matching receiver in
// registration order on the calling goroutine and return only after the last
// one finished. Each receiver call runs in its own span, a child of the span
// carried by the caller's context.
package signal

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "savesignal/internal/signal"

// Event is what a receiver gets for one dispatch.
type Event struct {
	Signal   string
	Sender   string
	Instance any
	Created  bool
}

// Receiver handles one event. A non-nil error stops Send.
type Receiver func(ctx context.Context, ev Event) error

// Response is the outcome of one receiver call.
type Response struct {
	UID string
	Err error
}

type binding struct {
	uid    string
	sender string
	fn     Receiver
}

type connectOptions struct {
	sender string
	uid    string
}

// ConnectOption customizes Connect.
type ConnectOption func(*connectOptions)

// WithSender restricts the receiver to events sent by sender.
func WithSender(sender string) ConnectOption {
	return func(o *connectOptions) { o.sender = sender }
}

// WithDispatchUID names the registration. A registration is identified by
// its UID together with its sender: connecting again with the same pair does
// nothing, the same UID with another sender is a separate registration.
func WithDispatchUID(uid string) ConnectOption {
	return func(o *connectOptions) { o.uid = uid }
}

// Signal is a named notification point with an ordered receiver list.
// It is safe for concurrent use.
type Signal struct {
	name string

	mu        sync.RWMutex
	receivers []binding
}

// New returns a signal without receivers.
func New(name string) *Signal {
	return &Signal{name: name}
}

// Name returns the signal name, e.g. "post_save".
func (s *Signal) Name() string { return s.name }

// Connect registers r and returns its dispatch UID.
func (s *Signal) Connect(r Receiver, opts ...ConnectOption) string {
	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.uid == "" {
		o.uid = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.receivers {
		if b.uid == o.uid && b.sender == o.sender {
			return o.uid
		}
	}
	s.receivers = append(s.receivers, binding{uid: o.uid, sender: o.sender, fn: r})
	return o.uid
}

// Disconnect removes the receiver registered under uid and reports whether
// there was one. Pass WithSender for a registration made with a sender.
func (s *Signal) Disconnect(uid string, opts ...ConnectOption) bool {
	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.receivers {
		if b.uid == uid && b.sender == o.sender {
			s.receivers = append(s.receivers[:i:i], s.receivers[i+1:]...)
			return true
		}
	}
	return false
}

// HasListeners reports whether any receiver would get an event from sender.
func (s *Signal) HasListeners(sender string) bool {
	return len(s.matching(sender)) > 0
}

// Send calls the matching receivers in order. The first receiver error stops
// dispatch; it is returned wrapped with the signal name and receiver UID, and
// the responses collected so far (including the failing one) are returned
// with it.
func (s *Signal) Send(ctx context.Context, ev Event) ([]Response, error) {
	ev.Signal = s.name
	bindings := s.matching(ev.Sender)
	responses := make([]Response, 0, len(bindings))
	for _, b := range bindings {
		err := s.call(ctx, b, ev)
		responses = append(responses, Response{UID: b.uid, Err: err})
		if err != nil {
			return responses, fmt.Errorf("signal %s: receiver %s: %w", s.name, b.uid, err)
		}
	}
	return responses, nil
}

// SendRobust calls every matching receiver regardless of failures. Receiver
// errors and panics are reported in the responses.
func (s *Signal) SendRobust(ctx context.Context, ev Event) []Response {
	ev.Signal = s.name
	bindings := s.matching(ev.Sender)
	responses := make([]Response, 0, len(bindings))
	for _, b := range bindings {
		responses = append(responses, Response{UID: b.uid, Err: s.callRecover(ctx, b, ev)})
	}
	return responses
}

// matching snapshots the receivers for sender so they run without the lock
// held; a receiver may connect or disconnect others.
func (s *Signal) matching(sender string) []binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]binding, 0, len(s.receivers))
	for _, b := range s.receivers {
		if b.sender == "" || b.sender == sender {
			out = append(out, b)
		}
	}
	return out
}

func (s *Signal) callRecover(ctx context.Context, b binding, ev Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("receiver %s panicked: %v", b.uid, p)
		}
	}()
	return s.call(ctx, b, ev)
}

func (s *Signal) call(ctx context.Context, b binding, ev Event) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "signal."+s.name,
		trace.WithAttributes(
			attribute.String("signal.name", s.name),
			attribute.String("signal.sender", ev.Sender),
			attribute.String("signal.receiver_uid", b.uid),
			attribute.Bool("signal.created", ev.Created),
		),
	)
	defer span.End()

	if err := b.fn(ctx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
