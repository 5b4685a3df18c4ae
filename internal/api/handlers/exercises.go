package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/etudehq/etude-api/internal/api/middleware"
	"github.com/etudehq/etude-api/internal/generator"
	"github.com/etudehq/etude-api/internal/library"
	"github.com/etudehq/etude-api/internal/logger"
	"github.com/etudehq/etude-api/internal/notation"
)

// ExerciseHandler serves exercise generation and catalogue endpoints.
type ExerciseHandler struct {
	lib *library.Library
}

func NewExerciseHandler(lib *library.Library) *ExerciseHandler {
	return &ExerciseHandler{lib: lib}
}

// Generate creates and persists a new exercise from the posted
// parameters. Parameter violations come back as a 400 carrying the
// full violation list.
func (h *ExerciseHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params generator.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := h.lib.GenerateExercise(c.Request.Context(), userID, params)
	if err != nil {
		var verr *generator.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid exercise parameters",
				"violations": verr.Violations,
			})
			return
		}
		logger.Error("exercise generation failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate exercise"})
		return
	}

	c.JSON(http.StatusCreated, ex)
}

// Preview generates without persisting; useful for parameter tuning in
// the UI.
func (h *ExerciseHandler) Preview(c *gin.Context) {
	var params generator.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := h.lib.PreviewExercise(params)
	if err != nil {
		var verr *generator.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid exercise parameters",
				"violations": verr.Violations,
			})
			return
		}
		logger.Error("exercise preview failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate exercise"})
		return
	}

	c.JSON(http.StatusOK, ex)
}

// List returns the caller's exercises, optionally filtered by ?q=.
func (h *ExerciseHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var (
		exercises []*notation.GeneratedExercise
		err       error
	)
	if q := c.Query("q"); q != "" {
		exercises, err = h.lib.SearchExercises(c.Request.Context(), userID, q)
	} else {
		exercises, err = h.lib.ListExercises(c.Request.Context(), userID)
	}
	if err != nil {
		logger.Error("exercise list failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exercises"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exercises": exercises, "count": len(exercises)})
}

// Get returns one exercise by id.
func (h *ExerciseHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ex, err := h.lib.GetExercise(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, library.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exercise not found"})
		return
	}
	if err != nil {
		logger.Error("exercise fetch failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load exercise"})
		return
	}

	c.JSON(http.StatusOK, ex)
}

// Delete removes one exercise by id.
func (h *ExerciseHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.lib.DeleteExercise(c.Request.Context(), userID, c.Param("id")); err != nil {
		logger.Error("exercise delete failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exercise"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Recommend is a deliberate stub; it answers 501 until the
// recommendation engine lands.
func (h *ExerciseHandler) Recommend(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	_, err := h.lib.RecommendExercises(c.Request.Context(), userID)
	if errors.Is(err, library.ErrNotImplemented) {
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected recommendation state"})
}
