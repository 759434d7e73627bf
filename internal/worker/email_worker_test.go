package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/mailer"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	err  error
	sent []model.EmailMessage
}

func (s *stubMailer) Send(_ context.Context, msg model.EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func encode(t *testing.T, msg model.EmailMessage) string {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(raw)
}

func TestHandleDelivers(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(nil, m, zerolog.Nop())

	retry := w.handle(context.Background(), encode(t, model.EmailMessage{ID: "1", To: "a@example.com"}))
	assert.Empty(t, retry)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "1", m.sent[0].ID)
}

func TestHandleRequeuesWithAttemptCount(t *testing.T) {
	w := NewEmailWorker(nil, &stubMailer{err: assert.AnError}, zerolog.Nop())

	retry := w.handle(context.Background(), encode(t, model.EmailMessage{ID: "1", To: "a@example.com", Attempts: 1}))
	require.NotEmpty(t, retry)

	var msg model.EmailMessage
	require.NoError(t, json.Unmarshal([]byte(retry), &msg))
	assert.Equal(t, 2, msg.Attempts)
}

func TestHandleDropsAfterMaxAttempts(t *testing.T) {
	w := NewEmailWorker(nil, &stubMailer{err: assert.AnError}, zerolog.Nop())

	retry := w.handle(context.Background(), encode(t, model.EmailMessage{ID: "1", Attempts: MaxEmailAttempts - 1}))
	assert.Empty(t, retry)
}

func TestHandleDropsInvalidRecipientAndGarbage(t *testing.T) {
	w := NewEmailWorker(nil, &stubMailer{err: mailer.ErrInvalidRecipient}, zerolog.Nop())

	assert.Empty(t, w.handle(context.Background(), encode(t, model.EmailMessage{ID: "1"})))
	assert.Empty(t, w.handle(context.Background(), "{not json"))
}

// memQueue is an in-memory list that, like Redis, refuses commands on a done context.
type memQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *memQueue) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	v, err := q.pop()
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	return redis.NewStringSliceResult([]string{keys[0], v}, nil)
}

func (q *memQueue) LPop(ctx context.Context, _ string) *redis.StringCmd {
	v, err := q.pop()
	return redis.NewStringResult(v, err)
}

func (q *memQueue) RPush(ctx context.Context, _ string, values ...interface{}) *redis.IntCmd {
	if err := ctx.Err(); err != nil {
		return redis.NewIntResult(0, err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, v := range values {
		q.items = append(q.items, v.(string))
	}
	return redis.NewIntResult(int64(len(q.items)), nil)
}

func (q *memQueue) pop() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", redis.Nil
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, nil
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func TestFailedDeliveryIsKeptWhenShuttingDown(t *testing.T) {
	q := &memQueue{items: []string{encode(t, model.EmailMessage{ID: "1", To: "a@example.com"})}}
	w := NewEmailWorker(q, &stubMailer{err: assert.AnError}, zerolog.Nop())
	w.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.processNext(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("retry delay ignored cancellation")
	}

	require.Equal(t, 1, q.len())
	var msg model.EmailMessage
	require.NoError(t, json.Unmarshal([]byte(q.items[0]), &msg))
	assert.Equal(t, 1, msg.Attempts)
}

func TestStartDrainsQueueOnShutdown(t *testing.T) {
	q := &memQueue{items: []string{
		encode(t, model.EmailMessage{ID: "1", To: "a@example.com"}),
		encode(t, model.EmailMessage{ID: "2", To: "b@example.com"}),
	}}
	m := &stubMailer{}
	w := NewEmailWorker(q, m, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	assert.Len(t, m.sent, 2)
	assert.Equal(t, 0, q.len())
}
