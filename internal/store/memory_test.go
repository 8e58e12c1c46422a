package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/seb_proctor/internal/models"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser(t)
	require.NoError(t, s.Upsert(ctx, u, models.ExamMetadata{StartTime: ts(1)}))

	got, _, err := s.Get(ctx, u)
	require.NoError(t, err)
	*got.StartTime = 42

	again, _, err := s.Get(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), *again.StartTime)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	_, _, err := s.Get(ctx, newUser(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Update(ctx, newUser(t), func(*models.ExamMetadata, bool) bool { return true }), context.Canceled)
}

func TestMemoryStoreDeclinedUpdateAddsNoEntry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Update(ctx, newUser(t), func(rec *models.ExamMetadata, found bool) bool {
			assert.False(t, found)
			return false
		}))
	}
	assert.Empty(t, s.entries)

	u := newUser(t)
	require.NoError(t, s.Update(ctx, u, func(rec *models.ExamMetadata, _ bool) bool {
		rec.Kicked = true
		return true
	}))
	assert.Len(t, s.entries, 1)
}
