package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/mailer"
	"github.com/sensoryplay/portal-backend/internal/model"
)

const (
	// MaxEmailAttempts is how many deliveries are tried before a message is dropped.
	MaxEmailAttempts = 5
	PollTimeout      = 1 * time.Second // Must be >= 1s to satisfy Redis
	RetryDelay       = 2 * time.Second
	requeueTimeout   = 3 * time.Second
)

// Queue is the slice of the Redis client the worker uses.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// EmailWorker consumes the email outbox queue and hands messages to a Mailer.
type EmailWorker struct {
	rdb        Queue
	mailer     mailer.Mailer
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewEmailWorker creates a new EmailWorker.
func NewEmailWorker(rdb Queue, m mailer.Mailer, log zerolog.Logger) *EmailWorker {
	return &EmailWorker{
		rdb:        rdb,
		mailer:     m,
		retryDelay: RetryDelay,
		log:        log.With().Str("component", "email_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *EmailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EmailWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.EmailOutboxQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if retry := w.handle(ctx, result[1]); retry != "" {
		w.requeue(retry)
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

// requeue puts a failed message back on the queue. It runs on its own context
// so a message that failed during shutdown is kept for the next start.
func (w *EmailWorker) requeue(raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()
	if err := w.rdb.RPush(ctx, config.WorkerKey.EmailOutboxQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Str("payload", raw).Msg("Re-queue failed, message lost")
	}
}

// handle delivers one queued message. It returns the payload to re-queue, or
// "" when the message was sent or dropped.
func (w *EmailWorker) handle(ctx context.Context, raw string) string {
	var msg model.EmailMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping message")
		return ""
	}

	err := w.mailer.Send(ctx, msg)
	if err == nil {
		return ""
	}

	msg.Attempts++
	logEvt := w.log.Error().Err(err).
		Str("email_id", msg.ID).
		Str("kind", string(msg.Kind)).
		Int("attempts", msg.Attempts)

	if errors.Is(err, mailer.ErrInvalidRecipient) || msg.Attempts >= MaxEmailAttempts {
		logEvt.Msg("Delivery failed, dropping message")
		return ""
	}

	retry, mErr := json.Marshal(msg)
	if mErr != nil {
		logEvt.Msg("Delivery failed and message could not be re-encoded")
		return ""
	}
	logEvt.Msg("Delivery failed, re-queued")
	return string(retry)
}

// drain delivers whatever is left in the queue before shutdown.
func (w *EmailWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.EmailOutboxQueue).Result()
		if err != nil {
			break
		}
		if retry := w.handle(ctx, result); retry != "" {
			w.requeue(retry)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
