package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/gbsb/tripmate/internal/domain"
)

// Sink performs chat side effects synchronously. RedisSink is the production Sink.
type Sink interface {
	AddMember(ctx context.Context, roomID uuid.UUID, email string) error
	RemoveMember(ctx context.Context, roomID uuid.UUID, email string) error
	Publish(ctx context.Context, msg domain.SystemMessage) error
}

type jobKind string

const (
	jobAdd     jobKind = "add_member"
	jobRemove  jobKind = "remove_member"
	jobMessage jobKind = "system_message"
)

type job struct {
	kind   jobKind
	roomID uuid.UUID
	email  string
	msg    domain.SystemMessage
}

func (j job) apply(ctx context.Context, sink Sink) error {
	switch j.kind {
	case jobAdd:
		return sink.AddMember(ctx, j.roomID, j.email)
	case jobRemove:
		return sink.RemoveMember(ctx, j.roomID, j.email)
	case jobMessage:
		return sink.Publish(ctx, j.msg)
	default:
		return backoff.Permanent(fmt.Errorf("unknown chat job %q", j.kind))
	}
}

// DispatcherOptions tunes queueing and retry. Zero values fall back to defaults.
type DispatcherOptions struct {
	QueueSize       int
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	AttemptTimeout  time.Duration
	Logger          *slog.Logger
}

// Dispatcher queues chat side effects and applies them on a background
// worker, retrying each with exponential backoff. A job that still fails
// after MaxElapsed, or that arrives while the queue is full or after Run has
// returned, is dropped and logged. Membership changes never wait on chat
// delivery.
type Dispatcher struct {
	sink  Sink
	queue chan job
	opts  DispatcherOptions
	log   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewDispatcher constructs a Dispatcher. Call Run to start delivering.
func NewDispatcher(sink Sink, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 200 * time.Millisecond
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = 30 * time.Second
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 3 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{sink: sink, queue: make(chan job, opts.QueueSize), opts: opts, log: log}
}

// AddUserToChat queues adding email to the room.
func (d *Dispatcher) AddUserToChat(roomID uuid.UUID, email string) {
	d.enqueue(job{kind: jobAdd, roomID: roomID, email: email})
}

// RemoveUserFromChat queues removing email from the room.
func (d *Dispatcher) RemoveUserFromChat(roomID uuid.UUID, email string) {
	d.enqueue(job{kind: jobRemove, roomID: roomID, email: email})
}

// SendSystemMessage queues msg for publication.
func (d *Dispatcher) SendSystemMessage(msg domain.SystemMessage) {
	d.enqueue(job{kind: jobMessage, roomID: msg.RoomID, msg: msg})
}

// enqueue never blocks. The send happens under mu so that no job can slip
// into the queue after shutdown has drained it.
func (d *Dispatcher) enqueue(j job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Error("chat job dropped after shutdown", "kind", j.kind, "room_id", j.roomID)
		return
	}
	select {
	case d.queue <- j:
	default:
		d.log.Warn("chat queue full, dropping job", "kind", j.kind, "room_id", j.roomID)
	}
}

// Run delivers queued jobs until ctx is cancelled. It then stops accepting
// jobs, gives each job still queued one attempt, and returns. Cancel ctx
// only after the producers (the HTTP server) have stopped.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.shutdown(context.WithoutCancel(ctx))
			return nil
		default:
		}

		select {
		case j := <-d.queue:
			d.deliver(ctx, j)
		case <-ctx.Done():
			d.shutdown(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (d *Dispatcher) shutdown(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.drain(ctx)
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.InitialInterval

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		actx, cancel := context.WithTimeout(ctx, d.opts.AttemptTimeout)
		defer cancel()
		return struct{}{}, j.apply(actx, d.sink)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(d.opts.MaxElapsed))
	if err != nil {
		d.log.Error("chat job dropped", "kind", j.kind, "room_id", j.roomID, "attempts", attempts, "error", err)
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case j := <-d.queue:
			actx, cancel := context.WithTimeout(ctx, d.opts.AttemptTimeout)
			if err := j.apply(actx, d.sink); err != nil {
				d.log.Error("chat job dropped on shutdown", "kind", j.kind, "room_id", j.roomID, "error", err)
			}
			cancel()
		default:
			return
		}
	}
}
