// Package dispatcher routes authoring commands to their handlers. The
// REPL and the maintenance subcommands feed it events; registration
// options add per-command queueing and debug logging without the
// handlers knowing about either.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one authoring command taken off the wire: the command name
// plus its raw arguments, still unparsed.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc consumes an event and produces the command's result.
type HandlerFunc func(Event) (any, error)

// Logger is the minimal logging surface the dispatcher needs. The
// logging package adapts zerolog to it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option tunes how a single command's handler is registered.
type Option func(*registration)

type registration struct {
	queueSize int
	blocking  bool
	logged    bool
}

// Buffered hands the command off to a worker goroutine behind a queue
// of the given size. Dispatch then returns "queued" immediately.
func Buffered(size int) Option {
	return func(r *registration) { r.queueSize = size }
}

// Blocking makes a buffered command wait for queue space instead of
// dropping the event when the queue is full.
func Blocking() Option {
	return func(r *registration) { r.blocking = true }
}

// Logged wraps the handler with debug logging and timing.
func Logged() Option {
	return func(r *registration) { r.logged = true }
}

// Dispatcher owns the command table and the per-command queues.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger
	metrics  *commandMetrics

	mu     sync.RWMutex
	queues map[string]chan Event
}

// New creates a dispatcher. Metrics go through the global OTel meter,
// which stays a no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
		logger:   logger,
	}

	m, err := newCommandMetrics(d.observeQueues)
	if err != nil {
		return nil, err
	}
	d.metrics = m

	return d, nil
}

// observeQueues reports the depth of every live command queue.
func (d *Dispatcher) observeQueues(o metric.Observer, gauge metric.Int64ObservableGauge) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for command, queue := range d.queues {
		o.ObserveInt64(gauge, int64(len(queue)),
			metric.WithAttributes(attribute.String("command", command)))
	}
}

// Register installs the handler for a command, applying any options.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	handler := h
	if reg.queueSize > 0 {
		handler = d.queued(command, reg.queueSize, reg.blocking, handler)
	}
	if reg.logged {
		handler = d.logged(command, handler)
	}

	d.handlers[command] = handler
}

// Dispatch runs the handler registered for the event's command.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// HasHandler reports whether the command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// queued moves the command onto a worker goroutine behind a channel.
// Non-blocking registrations drop events when the channel is full.
func (d *Dispatcher) queued(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	queue := make(chan Event, size)

	d.mu.Lock()
	d.queues[command] = queue
	d.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("command", command))

	go func() {
		for e := range queue {
			h(e)
			d.metrics.processed.Add(context.Background(), 1, attrs)
		}
	}()

	if blocking {
		return func(e Event) (any, error) {
			queue <- e
			return "queued", nil
		}
	}

	return func(e Event) (any, error) {
		select {
		case queue <- e:
			return "queued", nil
		default:
			d.metrics.dropped.Add(context.Background(), 1, attrs)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

// logged wraps the handler with per-command debug logging.
func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling command", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("command failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}

		d.logger.Debug("command complete", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
