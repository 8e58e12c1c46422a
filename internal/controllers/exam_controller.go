package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/exam"
	"github.com/zaqqye/seb_proctor/internal/middleware"
	"github.com/zaqqye/seb_proctor/internal/models"
	"github.com/zaqqye/seb_proctor/internal/ws"
)

const (
	opStart     = "start"
	opViolation = "violation"
	opEnd       = "end"
)

// ExamController exposes the exam lifecycle over HTTP and pushes every
// applied change to the websocket hubs.
type ExamController struct {
	Exams *exam.Controller
	Hubs  *ws.Hubs
	Log   *zap.Logger
}

type timestampRequest struct {
	Timestamp *FlexibleUint64 `json:"timestamp" binding:"required"`
}

type mutateFunc func(ctx context.Context, user models.UserID, t uint64) (exam.Result, error)

func (ec *ExamController) mutation(op string) mutateFunc {
	switch op {
	case opStart:
		return ec.Exams.SetStart
	case opViolation:
		return ec.Exams.AddViolation
	default:
		return ec.Exams.SetEnd
	}
}

// apply runs one mutation for user and answers with the record as that
// mutation left it.
func (ec *ExamController) apply(c *gin.Context, op string, user models.UserID) {
	var req timestampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := ec.mutation(op)(c.Request.Context(), user, uint64(*req.Timestamp))
	if err != nil {
		ec.Log.Error("exam mutation failed", zap.String("op", op), zap.Stringer("user", user), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update exam record"})
		return
	}

	if res.Applied() {
		publishExamUpdate(ec.Hubs, op, user, res)
	}
	c.JSON(http.StatusOK, gin.H{
		"applied":  res.Applied(),
		"outcome":  res.Outcome.String(),
		"found":    res.Found,
		"metadata": res.Metadata,
	})
}

func callerID(c *gin.Context) (models.UserID, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.UserID{}, false
	}
	return caller.ID, true
}

func paramUserID(c *gin.Context) (models.UserID, bool) {
	id, err := models.ParseUserID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return models.UserID{}, false
	}
	return id, true
}

// StartSelf records the exam start for the calling student.
func (ec *ExamController) StartSelf(c *gin.Context) {
	if id, ok := callerID(c); ok {
		ec.apply(c, opStart, id)
	}
}

// ViolationSelf lets the monitored client report its own violation.
func (ec *ExamController) ViolationSelf(c *gin.Context) {
	if id, ok := callerID(c); ok {
		ec.apply(c, opViolation, id)
	}
}

// EndSelf records the exam end for the calling student.
func (ec *ExamController) EndSelf(c *gin.Context) {
	if id, ok := callerID(c); ok {
		ec.apply(c, opEnd, id)
	}
}

// AddViolation records a violation observed by a supervisor.
func (ec *ExamController) AddViolation(c *gin.Context) {
	if id, ok := paramUserID(c); ok {
		ec.apply(c, opViolation, id)
	}
}

// SetEnd ends a student's exam on a supervisor's behalf.
func (ec *ExamController) SetEnd(c *gin.Context) {
	if id, ok := paramUserID(c); ok {
		ec.apply(c, opEnd, id)
	}
}

// GetSelf returns the calling student's record.
func (ec *ExamController) GetSelf(c *gin.Context) {
	if id, ok := callerID(c); ok {
		ec.metadata(c, id)
	}
}

// GetMetadata returns the record of the student named in the path.
func (ec *ExamController) GetMetadata(c *gin.Context) {
	if id, ok := paramUserID(c); ok {
		ec.metadata(c, id)
	}
}

func (ec *ExamController) metadata(c *gin.Context, user models.UserID) {
	rec, found, err := ec.Exams.GetMetadata(c.Request.Context(), user)
	if err != nil {
		ec.readFailed(c, user, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  user,
		"found":    found,
		"metadata": rec,
	})
}

// GetStartTime returns only the start time, null when not started.
func (ec *ExamController) GetStartTime(c *gin.Context) {
	id, ok := paramUserID(c)
	if !ok {
		return
	}
	t, err := ec.Exams.GetStartTime(c.Request.Context(), id)
	if err != nil {
		ec.readFailed(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "start_time": t})
}

// GetEndTime returns only the end time, null when not ended.
func (ec *ExamController) GetEndTime(c *gin.Context) {
	id, ok := paramUserID(c)
	if !ok {
		return
	}
	t, err := ec.Exams.GetEndTime(c.Request.Context(), id)
	if err != nil {
		ec.readFailed(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "end_time": t})
}

// GetViolationTimes returns the three violation slots in fill order.
func (ec *ExamController) GetViolationTimes(c *gin.Context) {
	id, ok := paramUserID(c)
	if !ok {
		return
	}
	v, err := ec.Exams.GetViolationTimes(c.Request.Context(), id)
	if err != nil {
		ec.readFailed(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "violations": v})
}

// IsKicked reports whether the student has used up the violation log.
func (ec *ExamController) IsKicked(c *gin.Context) {
	id, ok := paramUserID(c)
	if !ok {
		return
	}
	kicked, err := ec.Exams.IsKicked(c.Request.Context(), id)
	if err != nil {
		ec.readFailed(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "kicked": kicked})
}

func (ec *ExamController) readFailed(c *gin.Context, user models.UserID, err error) {
	ec.Log.Error("exam read failed", zap.Stringer("user", user), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read exam record"})
}
