package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader 依次返回 msgs，取完后阻塞到 ctx 结束
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkaGo.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkaGo.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkaGo.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumerRetriesThenCommits(t *testing.T) {
	r := &fakeReader{msgs: []kafkaGo.Message{{Offset: 1}, {Offset: 2}}}
	c := newConsumer(r, ConsumerConfig{MaxAttempts: 3, RetryBackoff: time.Millisecond}, nil)

	var mu sync.Mutex
	calls := map[int64]int{}
	handler := func(_ context.Context, m kafkaGo.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls[m.Offset]++
		if m.Offset == 1 && calls[1] < 2 {
			return errors.New("store down")
		}
		if m.Offset == 2 {
			return errors.New("always failing")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, handler) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2}, r.commits())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls[1], "recovered on second attempt")
	assert.Equal(t, 3, calls[2], "dropped after max attempts")
}

func TestConsumerCancelDuringRetrySkipsCommit(t *testing.T) {
	r := &fakeReader{msgs: []kafkaGo.Message{{Offset: 7}}}
	c := newConsumer(r, ConsumerConfig{MaxAttempts: 5, RetryBackoff: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var once sync.Once
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(context.Context, kafkaGo.Message) error {
			once.Do(func() { close(started) })
			return errors.New("store down")
		})
	}()
	<-started
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, r.commits())
}
