package store

import (
	"context"
	"errors"

	"github.com/zaqqye/seb_proctor/internal/models"
)

// ErrConflict is returned when an atomic update could not be committed
// after the backend's retry budget was spent.
var ErrConflict = errors.New("store: concurrent update conflict")

// MetadataStore maps user identities to exam records.
//
// Get never reports absence as an error. Upsert replaces a record
// wholesale. Update is the atomic read-modify-write: fn receives the
// stored record (or the zero value when absent) with a flag telling which,
// and the result is written only when fn returns true. fn may run more
// than once when a backend retries. Updates to one key are serialized;
// updates to different keys are independent.
type MetadataStore interface {
	Get(ctx context.Context, user models.UserID) (models.ExamMetadata, bool, error)
	Upsert(ctx context.Context, user models.UserID, rec models.ExamMetadata) error
	Update(ctx context.Context, user models.UserID, fn func(rec *models.ExamMetadata, found bool) bool) error
	Ping(ctx context.Context) error
}
