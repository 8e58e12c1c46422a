package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ViolationSlots is the fixed capacity of the violation log.
const ViolationSlots = 3

// ExamMetadata is the proctoring record of one user's exam attempt.
// The zero value is the record of a user who was never written.
type ExamMetadata struct {
	StartTime  *uint64                 `json:"start_time"`
	EndTime    *uint64                 `json:"end_time"`
	Violations [ViolationSlots]*uint64 `json:"violations"`
	Kicked     bool                    `json:"kicked"`
}

// Full reports whether every violation slot is occupied.
func (m ExamMetadata) Full() bool {
	for _, v := range m.Violations {
		if v == nil {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no pointers with m.
func (m ExamMetadata) Clone() ExamMetadata {
	out := ExamMetadata{Kicked: m.Kicked}
	out.StartTime = cloneTime(m.StartTime)
	out.EndTime = cloneTime(m.EndTime)
	for i, v := range m.Violations {
		out.Violations[i] = cloneTime(v)
	}
	return out
}

func cloneTime(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}

// ExamRecord is the row persisted by the postgres store. One row per user.
type ExamRecord struct {
	ID         uint           `gorm:"primaryKey"`
	UserKey    string         `gorm:"size:64;uniqueIndex"`
	StartTime  *NumericUint64 `gorm:"type:numeric(20,0)"`
	EndTime    *NumericUint64 `gorm:"type:numeric(20,0)"`
	Violations datatypes.JSON `gorm:"type:jsonb"`
	Kicked     bool           `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ExamRecord) TableName() string { return "exam_metadata" }

// Metadata decodes the row into its domain record.
func (r ExamRecord) Metadata() (ExamMetadata, error) {
	m := ExamMetadata{
		StartTime: fromNumeric(r.StartTime),
		EndTime:   fromNumeric(r.EndTime),
		Kicked:    r.Kicked,
	}
	if len(r.Violations) > 0 {
		var slots [ViolationSlots]*uint64
		if err := json.Unmarshal(r.Violations, &slots); err != nil {
			return ExamMetadata{}, err
		}
		m.Violations = slots
	}
	return m, nil
}

// Apply copies m into the row, keeping its identity columns.
func (r *ExamRecord) Apply(m ExamMetadata) error {
	slots, err := json.Marshal(m.Violations)
	if err != nil {
		return err
	}
	r.StartTime = toNumeric(m.StartTime)
	r.EndTime = toNumeric(m.EndTime)
	r.Violations = datatypes.JSON(slots)
	r.Kicked = m.Kicked
	return nil
}
