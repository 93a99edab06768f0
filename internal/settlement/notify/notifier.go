// Package notify delivers best-effort human-readable messages to actors.
// Delivery is fire-and-forget: a full queue drops the message rather than
// blocking or failing the settlement that produced it.
package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Notification is one message addressed to an actor.
type Notification struct {
	ActorID   uuid.UUID `json:"actor_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier accepts notifications without ever blocking the caller.
type Notifier interface {
	Notify(actorID uuid.UUID, message string)
}

// Sink consumes drained notifications.
type Sink interface {
	Deliver(n Notification)
}

// LogSink writes notifications to the structured log. It stands in for a
// game-side delivery channel.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(n Notification) {
	s.logger.Info("Actor notification",
		"actor_id", n.ActorID.String(),
		"message", n.Message)
}

// ChannelNotifier buffers notifications on a channel drained by a single
// goroutine. When the buffer is full the message is dropped and counted.
type ChannelNotifier struct {
	queue   chan Notification
	sink    Sink
	logger  *slog.Logger
	done    chan struct{}
	dropped atomic.Uint64

	mu     sync.RWMutex // guards closed against the queue close
	closed bool
}

// NewChannelNotifier starts a notifier with the given buffer size.
func NewChannelNotifier(logger *slog.Logger, sink Sink, buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	n := &ChannelNotifier{
		queue:  make(chan Notification, buffer),
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
	go n.drain()
	return n
}

// Notify enqueues a message. Never blocks; drops on a full queue.
func (n *ChannelNotifier) Notify(actorID uuid.UUID, message string) {
	notification := Notification{
		ActorID:   actorID,
		Message:   message,
		CreatedAt: time.Now(),
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.dropped.Add(1)
		n.logger.Warn("Notifier closed, dropping message",
			"actor_id", actorID.String())
		return
	}
	select {
	case n.queue <- notification:
	default:
		n.dropped.Add(1)
		n.logger.Warn("Notification queue full, dropping message",
			"actor_id", actorID.String())
	}
}

// Dropped reports how many notifications were discarded on a full queue.
func (n *ChannelNotifier) Dropped() uint64 {
	return n.dropped.Load()
}

// Close stops accepting messages and waits for the queue to drain. Calls to
// Notify during or after Close drop the message instead of panicking; Close
// is safe to call more than once.
func (n *ChannelNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *ChannelNotifier) drain() {
	defer close(n.done)
	for notification := range n.queue {
		n.sink.Deliver(notification)
	}
}
