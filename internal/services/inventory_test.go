package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kibetdev/ulms/internal/database/queries"
)

// fakeInventoryStore backs the querier with an in-memory guarded counter,
// mirroring the conditional UPDATE the real queries run.
type fakeInventoryStore struct {
	mu        sync.Mutex
	total     int32
	available int32
	exists    bool
}

func (f *fakeInventoryStore) book() queries.Book {
	return queries.Book{
		ID:              1,
		TotalCopies:     pgtype.Int4{Int32: f.total, Valid: true},
		AvailableCopies: pgtype.Int4{Int32: f.available, Valid: true},
		IsActive:        pgtype.Bool{Bool: true, Valid: true},
	}
}

func (f *fakeInventoryStore) GetBookByID(ctx context.Context, id int32) (queries.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists {
		return queries.Book{}, pgx.ErrNoRows
	}
	return f.book(), nil
}

func (f *fakeInventoryStore) ReserveBookCopy(ctx context.Context, id int32) (queries.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists || f.available <= 0 {
		return queries.Book{}, pgx.ErrNoRows
	}
	f.available--
	return f.book(), nil
}

func (f *fakeInventoryStore) ReleaseBookCopy(ctx context.Context, id int32) (queries.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists || f.available >= f.total {
		return queries.Book{}, pgx.ErrNoRows
	}
	f.available++
	return f.book(), nil
}

func newTestInventoryService(store *fakeInventoryStore) *InventoryService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInventoryService(store, logger)
}

func TestInventoryService_ReserveCopy(t *testing.T) {
	t.Run("decrements the available count", func(t *testing.T) {
		store := &fakeInventoryStore{total: 3, available: 2, exists: true}
		service := newTestInventoryService(store)

		require.NoError(t, service.ReserveCopy(context.Background(), 1))
		assert.Equal(t, int32(1), store.available)
	})

	t.Run("reports out of stock at zero copies", func(t *testing.T) {
		store := &fakeInventoryStore{total: 3, available: 0, exists: true}
		service := newTestInventoryService(store)

		err := service.ReserveCopy(context.Background(), 1)
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Equal(t, int32(0), store.available)
	})

	t.Run("reports not found for a missing book", func(t *testing.T) {
		store := &fakeInventoryStore{exists: false}
		service := newTestInventoryService(store)

		err := service.ReserveCopy(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInventoryService_ReleaseCopy(t *testing.T) {
	t.Run("increments the available count", func(t *testing.T) {
		store := &fakeInventoryStore{total: 3, available: 1, exists: true}
		service := newTestInventoryService(store)

		require.NoError(t, service.ReleaseCopy(context.Background(), 1))
		assert.Equal(t, int32(2), store.available)
	})

	t.Run("refuses to push available above total", func(t *testing.T) {
		store := &fakeInventoryStore{total: 3, available: 3, exists: true}
		service := newTestInventoryService(store)

		err := service.ReleaseCopy(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvariantViolation)
		assert.Equal(t, int32(3), store.available)
	})
}

// Two concurrent reservations of the last copy must resolve to exactly one
// success and one out-of-stock failure.
func TestInventoryService_ReserveCopy_LastCopyRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := &fakeInventoryStore{total: 1, available: 1, exists: true}
		service := newTestInventoryService(store)

		results := make(chan error, 2)
		var start sync.WaitGroup
		start.Add(1)

		for j := 0; j < 2; j++ {
			go func() {
				start.Wait()
				results <- service.ReserveCopy(context.Background(), 1)
			}()
		}
		start.Done()

		var successes, outOfStock int
		for j := 0; j < 2; j++ {
			err := <-results
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrOutOfStock):
				outOfStock++
			}
		}

		require.Equal(t, 1, successes)
		require.Equal(t, 1, outOfStock)
		require.Equal(t, int32(0), store.available)
	}
}
