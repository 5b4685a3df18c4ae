package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/etudehq/etude-api/internal/api/middleware"
	"github.com/etudehq/etude-api/internal/library"
	"github.com/etudehq/etude-api/internal/logger"
)

// RepertoireHandler serves practice-status records and practice-session
// recording.
type RepertoireHandler struct {
	lib *library.Library
}

func NewRepertoireHandler(lib *library.Library) *RepertoireHandler {
	return &RepertoireHandler{lib: lib}
}

type setStatusRequest struct {
	ScoreID string `json:"score_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Notes   string `json:"notes"`
}

// SetStatus upserts the caller's practice status for a score.
func (h *RepertoireHandler) SetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rs := library.RepertoireStatus{
		OwnerID: userID,
		ScoreID: req.ScoreID,
		Status:  req.Status,
		Notes:   req.Notes,
	}
	if err := h.lib.SetRepertoireStatus(c.Request.Context(), rs); err != nil {
		logger.Error("repertoire update failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update repertoire"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// List returns the caller's repertoire records.
func (h *RepertoireHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.lib.GetRepertoire(c.Request.Context(), userID)
	if err != nil {
		logger.Error("repertoire list failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list repertoire"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repertoire": records, "count": len(records)})
}

type practiceSessionRequest struct {
	ExerciseID string `json:"exercise_id"`
	ScoreID    string `json:"score_id"`
	DurationS  int    `json:"duration_seconds" binding:"required"`
}

// RecordSession publishes a practice-session event for the
// practice-logging module.
func (h *RepertoireHandler) RecordSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req practiceSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ExerciseID == "" && req.ScoreID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exercise_id or score_id is required"})
		return
	}

	h.lib.RecordPracticeSession(c.Request.Context(), library.PracticeSession{
		OwnerID:    userID,
		ExerciseID: req.ExerciseID,
		ScoreID:    req.ScoreID,
		DurationS:  req.DurationS,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}
