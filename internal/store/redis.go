package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/models"
)

// RedisStore keeps each record as a JSON value under its own key.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	log        *zap.Logger
	maxRetries int
}

func NewRedisStore(client *redis.Client, prefix string, log *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, log: log, maxRetries: 16}
}

func (s *RedisStore) key(user models.UserID) string {
	return fmt.Sprintf("%sexam:%s", s.prefix, user.String())
}

func decodeRecord(data []byte) (models.ExamMetadata, error) {
	var m models.ExamMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return models.ExamMetadata{}, fmt.Errorf("decode exam record: %w", err)
	}
	return m, nil
}

func (s *RedisStore) Get(ctx context.Context, user models.UserID) (models.ExamMetadata, bool, error) {
	data, err := s.client.Get(ctx, s.key(user)).Bytes()
	if err == redis.Nil {
		return models.ExamMetadata{}, false, nil
	}
	if err != nil {
		return models.ExamMetadata{}, false, err
	}
	m, err := decodeRecord(data)
	if err != nil {
		return models.ExamMetadata{}, false, err
	}
	return m, true, nil
}

func (s *RedisStore) Upsert(ctx context.Context, user models.UserID, rec models.ExamMetadata) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(user), data, 0).Err()
}

// Update runs an optimistic WATCH/MULTI transaction and retries when the
// key changed underneath it.
func (s *RedisStore) Update(ctx context.Context, user models.UserID, fn func(rec *models.ExamMetadata, found bool) bool) error {
	key := s.key(user)
	txf := func(tx *redis.Tx) error {
		var rec models.ExamMetadata
		found := false
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			if rec, err = decodeRecord(data); err != nil {
				return err
			}
			found = true
		}
		if !fn(&rec, found) {
			return nil
		}
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}
	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("exam record changed during update, retrying", zap.String("key", key), zap.Int("attempt", i))
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
