package exam

import (
	"context"

	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/models"
	"github.com/zaqqye/seb_proctor/internal/store"
)

// Result describes one mutating call: what it did and the record as the
// call left it. Metadata is captured inside the atomic update, so it never
// reflects a later call.
type Result struct {
	Outcome  Outcome
	Metadata models.ExamMetadata
	// Found is false when no record exists after the call.
	Found bool
	// Kicked is true only for the call that filled the last violation slot.
	Kicked bool
}

// Applied reports whether the call changed the record.
func (r Result) Applied() bool { return r.Outcome == Applied }

// Controller applies the exam lifecycle to records held by a MetadataStore.
// It keeps no state of its own.
type Controller struct {
	store     store.MetadataStore
	endPolicy EndPolicy
	log       *zap.Logger
}

func NewController(s store.MetadataStore, policy EndPolicy, log *zap.Logger) *Controller {
	if policy == "" {
		policy = EndGuarded
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{store: s, endPolicy: policy, log: log}
}

func (c *Controller) EndPolicy() EndPolicy { return c.endPolicy }

// SetStart records the start time, overwriting any earlier one.
func (c *Controller) SetStart(ctx context.Context, user models.UserID, startTime uint64) (Result, error) {
	var res Result
	err := c.store.Update(ctx, user, func(rec *models.ExamMetadata, _ bool) bool {
		t := startTime
		rec.StartTime = &t
		res = Result{Outcome: Applied, Metadata: rec.Clone(), Found: true}
		return true
	})
	return res, err
}

// AddViolation fills the first empty violation slot. When every slot is
// taken the violation is dropped. Kicked is recomputed and the record is
// written either way.
func (c *Controller) AddViolation(ctx context.Context, user models.UserID, violationTime uint64) (Result, error) {
	var res Result
	err := c.store.Update(ctx, user, func(rec *models.ExamMetadata, _ bool) bool {
		res = Result{Outcome: LogFull, Found: true}
		for i := range rec.Violations {
			if rec.Violations[i] == nil {
				t := violationTime
				rec.Violations[i] = &t
				res.Outcome = Applied
				res.Kicked = i == len(rec.Violations)-1
				break
			}
		}
		rec.Kicked = rec.Full()
		res.Metadata = rec.Clone()
		return true
	})
	if err != nil {
		return res, err
	}
	switch {
	case res.Kicked:
		c.log.Info("student kicked", zap.Stringer("user", user), zap.Uint64("time", violationTime))
	case res.Outcome == LogFull:
		c.log.Debug("violation dropped, log full", zap.Stringer("user", user), zap.Uint64("time", violationTime))
	}
	return res, nil
}

// SetEnd records the end time according to the configured EndPolicy.
// A guarded rejection writes nothing.
func (c *Controller) SetEnd(ctx context.Context, user models.UserID, endTime uint64) (Result, error) {
	var res Result
	err := c.store.Update(ctx, user, func(rec *models.ExamMetadata, found bool) bool {
		res = Result{Outcome: c.checkEnd(*rec, endTime), Found: found}
		if res.Outcome != Applied {
			res.Metadata = rec.Clone()
			return false
		}
		t := endTime
		rec.EndTime = &t
		res.Metadata = rec.Clone()
		res.Found = true
		return true
	})
	if err != nil {
		return res, err
	}
	if res.Outcome != Applied {
		c.log.Debug("end time rejected", zap.Stringer("user", user),
			zap.Uint64("time", endTime), zap.Stringer("outcome", res.Outcome))
	}
	return res, nil
}

func (c *Controller) checkEnd(rec models.ExamMetadata, endTime uint64) Outcome {
	if c.endPolicy == EndPermissive {
		return Applied
	}
	if rec.StartTime == nil {
		return NotStarted
	}
	if endTime <= *rec.StartTime {
		return NotAfterStart
	}
	return Applied
}

// GetMetadata returns the stored record and whether one exists. An absent
// record comes back as the zero value.
func (c *Controller) GetMetadata(ctx context.Context, user models.UserID) (models.ExamMetadata, bool, error) {
	return c.store.Get(ctx, user)
}

// GetStartTime returns the start time, nil when not started.
func (c *Controller) GetStartTime(ctx context.Context, user models.UserID) (*uint64, error) {
	rec, _, err := c.store.Get(ctx, user)
	return rec.StartTime, err
}

// GetEndTime returns the end time, nil when not ended.
func (c *Controller) GetEndTime(ctx context.Context, user models.UserID) (*uint64, error) {
	rec, _, err := c.store.Get(ctx, user)
	return rec.EndTime, err
}

// GetViolationTimes returns the violation slots in fill order.
func (c *Controller) GetViolationTimes(ctx context.Context, user models.UserID) ([models.ViolationSlots]*uint64, error) {
	rec, _, err := c.store.Get(ctx, user)
	return rec.Violations, err
}

// IsKicked reports whether the violation log is full.
func (c *Controller) IsKicked(ctx context.Context, user models.UserID) (bool, error) {
	rec, _, err := c.store.Get(ctx, user)
	return rec.Kicked, err
}
