package workers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeJobQueue struct {
	mu      sync.Mutex
	pending []int32
	drains  int
}

func (q *fakeJobQueue) ProcessQueue(ctx context.Context, batchSize int, handler func(ctx context.Context, notificationID int32) error) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.drains++

	processed := 0
	for len(q.pending) > 0 && processed < batchSize {
		id := q.pending[0]
		q.pending = q.pending[1:]
		if err := handler(ctx, id); err != nil {
			continue
		}
		processed++
	}
	return processed, nil
}

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []int32
}

func (d *recordingDeliverer) Deliver(ctx context.Context, notificationID int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, notificationID)
	return nil
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

func TestNotificationDispatcher_DrainsQueue(t *testing.T) {
	queue := &fakeJobQueue{pending: []int32{41, 42, 43}}
	deliverer := &recordingDeliverer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dispatcher := NewNotificationDispatcher(queue, deliverer, 10*time.Millisecond, 50, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	assert.Eventually(t, func() bool {
		return deliverer.count() == 3
	}, time.Second, 5*time.Millisecond)

	deliverer.mu.Lock()
	defer deliverer.mu.Unlock()
	assert.Equal(t, []int32{41, 42, 43}, deliverer.delivered)
}

func TestNotificationDispatcher_StopsOnCancel(t *testing.T) {
	queue := &fakeJobQueue{}
	deliverer := &recordingDeliverer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dispatcher := NewNotificationDispatcher(queue, deliverer, 10*time.Millisecond, 50, logger)

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Start(ctx)

	assert.Eventually(t, func() bool {
		queue.mu.Lock()
		defer queue.mu.Unlock()
		return queue.drains >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(50 * time.Millisecond)
	queue.mu.Lock()
	settled := queue.drains
	queue.mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	queue.mu.Lock()
	defer queue.mu.Unlock()
	assert.Equal(t, settled, queue.drains)
}
