package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zaqqye/seb_proctor/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore persists one exam_metadata row per user through gorm.
type PostgresStore struct {
	DB         *gorm.DB
	Log        *zap.Logger
	MaxRetries int
}

func NewPostgresStore(db *gorm.DB, log *zap.Logger) *PostgresStore {
	return &PostgresStore{DB: db, Log: log, MaxRetries: 3}
}

func (s *PostgresStore) Get(ctx context.Context, user models.UserID) (models.ExamMetadata, bool, error) {
	var row models.ExamRecord
	err := s.DB.WithContext(ctx).Where("user_key = ?", user.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ExamMetadata{}, false, nil
	}
	if err != nil {
		return models.ExamMetadata{}, false, fmt.Errorf("load exam record: %w", err)
	}
	m, err := row.Metadata()
	if err != nil {
		return models.ExamMetadata{}, false, fmt.Errorf("decode exam record: %w", err)
	}
	return m, true, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, user models.UserID, rec models.ExamMetadata) error {
	row := models.ExamRecord{UserKey: user.String()}
	if err := row.Apply(rec); err != nil {
		return fmt.Errorf("encode exam record: %w", err)
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "violations", "kicked", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert exam record: %w", err)
	}
	return nil
}

// Update locks the row for the duration of the transaction. Two first
// writes for the same user can both miss the row; the loser hits the
// unique index and the whole transaction is retried.
func (s *PostgresStore) Update(ctx context.Context, user models.UserID, fn func(rec *models.ExamMetadata, found bool) bool) error {
	key := user.String()
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var row models.ExamRecord
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_key = ?", key).First(&row).Error
			exists := true
			if errors.Is(err, gorm.ErrRecordNotFound) {
				exists = false
				row = models.ExamRecord{UserKey: key}
			} else if err != nil {
				return err
			}
			rec, err := row.Metadata()
			if err != nil {
				return err
			}
			if !fn(&rec, exists) {
				return nil
			}
			if err := row.Apply(rec); err != nil {
				return err
			}
			if exists {
				return tx.Save(&row).Error
			}
			return tx.Create(&row).Error
		})
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			s.Log.Debug("exam record created concurrently, retrying",
				zap.String("user", key), zap.Int("attempt", attempt))
			continue
		}
		return fmt.Errorf("update exam record: %w", err)
	}
	return ErrConflict
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
