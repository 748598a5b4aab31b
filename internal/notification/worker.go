package notification

import (
	"context"
	"log/slog"
	"time"
)

// AsyncDispatcher buffers events on a channel and delivers them from a
// background worker, decoupling lifecycle transitions from sink latency.
// A full buffer drops the event with a warning; losing a courtesy email is
// acceptable, blocking a submission is not.
type AsyncDispatcher struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
	onDrop func()
	onSent func(err error)
}

// Option configures an AsyncDispatcher.
type Option func(*AsyncDispatcher)

// WithBuffer sets the inbox capacity.
func WithBuffer(n int) Option {
	return func(d *AsyncDispatcher) {
		d.inbox = make(chan Event, n)
	}
}

// WithDropHook registers a callback fired when an event is dropped, used to
// feed the metrics counter.
func WithDropHook(fn func()) Option {
	return func(d *AsyncDispatcher) { d.onDrop = fn }
}

// WithSentHook registers a callback fired after each delivery attempt.
func WithSentHook(fn func(err error)) Option {
	return func(d *AsyncDispatcher) { d.onSent = fn }
}

func NewAsyncDispatcher(sink Sink, logger *slog.Logger, opts ...Option) *AsyncDispatcher {
	d := &AsyncDispatcher{
		sink:   sink,
		inbox:  make(chan Event, 64),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch enqueues the event without blocking. The event timestamp is filled
// in if the producer left it zero.
func (d *AsyncDispatcher) Dispatch(_ context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case d.inbox <- event:
	default:
		d.logger.Warn("notification dropped, inbox full",
			"type", string(event.Type),
			"application_id", event.ApplicationID.String(),
		)
		if d.onDrop != nil {
			d.onDrop()
		}
	}
}

// Run consumes the inbox until ctx is cancelled, then drains what is already
// buffered. Delivery errors are logged and swallowed.
func (d *AsyncDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return ctx.Err()
		case event := <-d.inbox:
			d.deliver(event)
		}
	}
}

func (d *AsyncDispatcher) drain() {
	for {
		select {
		case event := <-d.inbox:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *AsyncDispatcher) deliver(event Event) {
	// Sinks get their own deadline; the producing request is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := d.sink.Send(ctx, event)
	if err != nil {
		d.logger.Warn("notification delivery failed",
			"type", string(event.Type),
			"user_id", event.UserID.String(),
			"error", err,
		)
	}
	if d.onSent != nil {
		d.onSent(err)
	}
}
