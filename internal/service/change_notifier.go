package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/pkg/jobs"
)

const (
	changeTopic          = "planner.changed"
	inlineHandlerTimeout = 2 * time.Second
)

// ChangeHandler reacts to a change event.
type ChangeHandler func(ctx context.Context, event models.ChangeEvent) error

// ChangeNotifier is the change notification channel. Inline handlers run
// inside Publish and must be quick; their errors are only logged. Queue
// workers then fan the event out to the asynchronous subscribers.
type ChangeNotifier struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger

	mu          sync.RWMutex
	inline      []ChangeHandler
	subscribers []ChangeHandler
}

// NewChangeNotifier builds a notifier on top of an in-memory job queue.
func NewChangeNotifier(cfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *ChangeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &ChangeNotifier{metrics: metrics, logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	n.queue = jobs.NewQueue("change-events", n.dispatch, cfg)
	return n
}

// Subscribe registers a handler for every subsequent event.
func (n *ChangeNotifier) Subscribe(handler ChangeHandler) {
	if handler == nil {
		return
	}
	n.mu.Lock()
	n.subscribers = append(n.subscribers, handler)
	n.mu.Unlock()
}

// SubscribeInline registers a handler that runs before Publish returns.
func (n *ChangeNotifier) SubscribeInline(handler ChangeHandler) {
	if handler == nil {
		return
	}
	n.mu.Lock()
	n.inline = append(n.inline, handler)
	n.mu.Unlock()
}

// Start launches the delivery workers.
func (n *ChangeNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop halts delivery; undelivered events are dropped.
func (n *ChangeNotifier) Stop() {
	n.queue.Stop()
}

// Publish runs the inline handlers and enqueues the event for the subscribers.
// A full or stopped queue drops it with a warning. Publish never fails the caller.
func (n *ChangeNotifier) Publish(event models.ChangeEvent) {
	n.mu.RLock()
	inline := make([]ChangeHandler, len(n.inline))
	copy(inline, n.inline)
	n.mu.RUnlock()
	if len(inline) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), inlineHandlerTimeout)
		defer cancel()
		for _, handler := range inline {
			if err := handler(ctx, event); err != nil {
				n.logger.Warn("inline change handler failed", zap.String("user_id", event.UserID), zap.Error(err))
			}
		}
	}

	err := n.queue.TryEnqueue(jobs.Job{ID: uuid.NewString(), Topic: changeTopic, Payload: event})
	if err == nil {
		n.metrics.RecordChangeEvent("queued")
		return
	}
	n.metrics.RecordChangeEvent("dropped")
	fields := []zap.Field{
		zap.String("user_id", event.UserID),
		zap.String("collection", string(event.Collection)),
		zap.String("action", string(event.Action)),
		zap.Error(err),
	}
	if errors.Is(err, jobs.ErrQueueFull) {
		n.logger.Warn("change event dropped: queue full", fields...)
		return
	}
	n.logger.Warn("change event dropped", fields...)
}

func (n *ChangeNotifier) dispatch(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.ChangeEvent)
	if !ok {
		n.logger.Error("unexpected change payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}

	n.mu.RLock()
	handlers := make([]ChangeHandler, len(n.subscribers))
	copy(handlers, n.subscribers)
	n.mu.RUnlock()

	var errs error
	for _, handler := range handlers {
		errs = multierr.Append(errs, handler(ctx, event))
	}
	if errs != nil {
		n.metrics.RecordChangeEvent(OutcomeFailure)
		return errs
	}
	n.metrics.RecordChangeEvent("delivered")
	return nil
}
