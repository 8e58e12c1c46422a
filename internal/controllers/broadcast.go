package controllers

import (
	"time"

	"github.com/zaqqye/seb_proctor/internal/exam"
	"github.com/zaqqye/seb_proctor/internal/models"
	"github.com/zaqqye/seb_proctor/internal/ws"
)

// publishExamUpdate pushes the record a mutation wrote to supervisors and to
// the student it belongs to. Only the call that filled the last slot sends
// the kicked message.
func publishExamUpdate(hubs *ws.Hubs, op string, user models.UserID, res exam.Result) {
	rec := res.Metadata
	if hubs == nil {
		return
	}
	if hubs.Monitoring != nil {
		hubs.Monitoring.Broadcast(ws.ExamEvent{
			Type:     op,
			UserID:   user,
			Outcome:  res.Outcome.String(),
			Metadata: rec,
			At:       time.Now().UTC(),
		})
	}
	if hubs.Student != nil {
		msg := ws.StudentMessage{
			Type:       ws.StudentStatusUpdate,
			Kicked:     rec.Kicked,
			StartTime:  rec.StartTime,
			EndTime:    rec.EndTime,
			Violations: rec.Violations,
		}
		if res.Kicked {
			msg.Type = ws.StudentKicked
			msg.Message = "violation limit reached"
		}
		hubs.Student.Notify(user, msg)
	}
}
