package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/seb_proctor/internal/models"
)

func ts(v uint64) *uint64 { return &v }

func newUser(t *testing.T) models.UserID {
	t.Helper()
	id, err := models.ParseUserID(uuid.NewString())
	require.NoError(t, err)
	return id
}

// runStoreSuite checks the MetadataStore contract against one backend.
func runStoreSuite(t *testing.T, s MetadataStore) {
	ctx := context.Background()

	t.Run("absent record", func(t *testing.T) {
		rec, found, err := s.Get(ctx, newUser(t))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, models.ExamMetadata{}, rec)
	})

	t.Run("upsert replaces wholesale", func(t *testing.T) {
		u := newUser(t)
		first := models.ExamMetadata{StartTime: ts(100), Violations: [models.ViolationSlots]*uint64{ts(110)}}
		require.NoError(t, s.Upsert(ctx, u, first))

		got, found, err := s.Get(ctx, u)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, first, got)

		second := models.ExamMetadata{EndTime: ts(200)}
		require.NoError(t, s.Upsert(ctx, u, second))
		got, _, err = s.Get(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("update without write leaves record absent", func(t *testing.T) {
		u := newUser(t)
		called := false
		require.NoError(t, s.Update(ctx, u, func(rec *models.ExamMetadata, found bool) bool {
			called = true
			assert.False(t, found)
			assert.Equal(t, models.ExamMetadata{}, *rec)
			rec.EndTime = ts(1)
			return false
		}))
		assert.True(t, called)

		_, found, err := s.Get(ctx, u)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("update creates and modifies", func(t *testing.T) {
		u := newUser(t)
		require.NoError(t, s.Update(ctx, u, func(rec *models.ExamMetadata, found bool) bool {
			assert.False(t, found)
			rec.StartTime = ts(5)
			return true
		}))
		require.NoError(t, s.Update(ctx, u, func(rec *models.ExamMetadata, found bool) bool {
			assert.True(t, found)
			require.NotNil(t, rec.StartTime)
			rec.Violations[0] = ts(*rec.StartTime + 1)
			return true
		}))
		got, found, err := s.Get(ctx, u)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, models.ExamMetadata{StartTime: ts(5), Violations: [models.ViolationSlots]*uint64{ts(6)}}, got)
	})

	t.Run("rejected update after a record exists keeps it", func(t *testing.T) {
		u := newUser(t)
		require.NoError(t, s.Upsert(ctx, u, models.ExamMetadata{StartTime: ts(9)}))
		require.NoError(t, s.Update(ctx, u, func(rec *models.ExamMetadata, found bool) bool {
			assert.True(t, found)
			rec.StartTime = ts(10)
			return false
		}))
		got, found, err := s.Get(ctx, u)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, models.ExamMetadata{StartTime: ts(9)}, got)
	})

	t.Run("full uint64 range round trips", func(t *testing.T) {
		const top = ^uint64(0)
		u := newUser(t)
		want := models.ExamMetadata{
			StartTime:  ts(top - 1),
			EndTime:    ts(top),
			Violations: [models.ViolationSlots]*uint64{ts(top), ts(1 << 63), ts(0)},
			Kicked:     true,
		}
		require.NoError(t, s.Upsert(ctx, u, want))
		got, found, err := s.Get(ctx, u)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)

		v := newUser(t)
		require.NoError(t, s.Update(ctx, v, func(rec *models.ExamMetadata, _ bool) bool {
			rec.StartTime = ts(1 << 63)
			return true
		}))
		require.NoError(t, s.Update(ctx, v, func(rec *models.ExamMetadata, found bool) bool {
			assert.True(t, found)
			require.NotNil(t, rec.StartTime)
			assert.Equal(t, uint64(1<<63), *rec.StartTime)
			rec.EndTime = ts(top)
			return true
		}))
		got, _, err = s.Get(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, models.ExamMetadata{StartTime: ts(1 << 63), EndTime: ts(top)}, got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		u1, u2 := newUser(t), newUser(t)
		require.NoError(t, s.Upsert(ctx, u1, models.ExamMetadata{Kicked: true}))
		require.NoError(t, s.Upsert(ctx, u2, models.ExamMetadata{StartTime: ts(3)}))

		got, _, err := s.Get(ctx, u1)
		require.NoError(t, err)
		assert.Equal(t, models.ExamMetadata{Kicked: true}, got)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		u := newUser(t)
		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Update(ctx, u, func(rec *models.ExamMetadata, _ bool) bool {
					n := uint64(1)
					if rec.StartTime != nil {
						n = *rec.StartTime + 1
					}
					rec.StartTime = &n
					return true
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		got, _, err := s.Get(ctx, u)
		require.NoError(t, err)
		require.NotNil(t, got.StartTime)
		assert.Equal(t, uint64(workers), *got.StartTime)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
