package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-vlyx/internal/lock"
	"github.com/noah-isme/backend-vlyx/internal/obs"
)

// TaskSubmit is the asynq task type carrying a Submission.
const TaskSubmit = "quote:submit"

// Dispatcher hands an accepted submission to its sink, either inline or through a queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub Submission) error
}

// Async reports whether d defers delivery to a background worker.
func Async(d Dispatcher) bool {
	_, ok := d.(AsyncDispatcher)
	return ok
}

// SyncDispatcher delivers within the request.
type SyncDispatcher struct {
	Sink   Sink
	Logger zerolog.Logger
}

// Dispatch implements Dispatcher.
func (d SyncDispatcher) Dispatch(ctx context.Context, sub Submission) error {
	if d.Sink == nil {
		return errors.New("quote: sink not configured")
	}
	return deliver(ctx, d.Sink, sub, d.Logger)
}

// Enqueuer is the subset of asynq.Client used to queue submissions.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsyncDispatcher queues submissions for the worker. The quote ID doubles as the task ID so a
// retried request does not enqueue the same quote twice.
type AsyncDispatcher struct {
	Client   Enqueuer
	Queue    string
	MaxRetry int
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Dispatch implements Dispatcher.
func (d AsyncDispatcher) Dispatch(ctx context.Context, sub Submission) error {
	if d.Client == nil {
		return errors.New("quote: task client not configured")
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("quote: encode task: %w", err)
	}
	opts := []asynq.Option{asynq.TaskID(sub.Quote.ID.String())}
	if d.Queue != "" {
		opts = append(opts, asynq.Queue(d.Queue))
	}
	if d.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(d.MaxRetry))
	}
	if d.Timeout > 0 {
		opts = append(opts, asynq.Timeout(d.Timeout))
	}
	_, err = d.Client.EnqueueContext(ctx, asynq.NewTask(TaskSubmit, payload), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		d.Logger.Debug().Str("quote_id", sub.Quote.ID.String()).Msg("quote already queued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("quote: enqueue: %w", err)
	}
	d.Logger.Debug().Str("quote_id", sub.Quote.ID.String()).Str("queue", d.Queue).Msg("quote queued")
	return nil
}

// NewSubmitHandler returns the worker handler for TaskSubmit. Delivery for a given quote is
// serialised through locker; a malformed payload is dropped without retry.
func NewSubmitHandler(sink Sink, locker lock.Locker, lockTTL time.Duration, logger zerolog.Logger) asynq.HandlerFunc {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return func(ctx context.Context, task *asynq.Task) error {
		var sub Submission
		if err := json.Unmarshal(task.Payload(), &sub); err != nil {
			logger.Error().Err(err).Str("task", task.Type()).Msg("dropping malformed quote task")
			return fmt.Errorf("quote: decode task: %v: %w", err, asynq.SkipRetry)
		}
		run := func(ctx context.Context) error {
			return deliver(ctx, sink, sub, logger)
		}
		if locker == nil {
			return run(ctx)
		}
		key := "lock:quote:" + sub.Quote.ID.String()
		return locker.TryWithLock(ctx, key, lockTTL, run)
	}
}

func deliver(ctx context.Context, sink Sink, sub Submission, logger zerolog.Logger) error {
	ctx, span := obs.StartSpan(ctx, "quote.deliver",
		attribute.String("quote.id", sub.Quote.ID.String()),
		attribute.String("quote.sink", sink.Name()),
	)
	err := sink.Deliver(ctx, sub)
	obs.EndSpan(span, err)
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.IncCounter(obs.QuoteSubmissionsTotal, sink.Name(), result)
	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.Str("quote_id", sub.Quote.ID.String()).Str("sink", sink.Name()).Msg("quote delivery")
	return err
}
