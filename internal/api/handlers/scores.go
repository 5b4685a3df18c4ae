package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/etudehq/etude-api/internal/convert"
	"github.com/etudehq/etude-api/internal/library"
	"github.com/etudehq/etude-api/internal/logger"
	"github.com/etudehq/etude-api/internal/notation"
)

// ScoreHandler serves score persistence, validation and conversion.
type ScoreHandler struct {
	lib *library.Library
}

func NewScoreHandler(lib *library.Library) *ScoreHandler {
	return &ScoreHandler{lib: lib}
}

// Save validates and persists a multi-voice score. Structural errors
// reject the save with the finding list; warnings are returned
// alongside the saved id.
func (h *ScoreHandler) Save(c *gin.Context) {
	var sc notation.Score
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.lib.SaveScore(c.Request.Context(), &sc)
	if err != nil {
		if !result.OK() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    "Score failed validation",
				"errors":   result.Errors,
				"warnings": result.Warnings,
			})
			return
		}
		logger.Error("score save failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save score"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       sc.ID,
		"warnings": result.Warnings,
	})
}

// Get loads a persisted score by id.
func (h *ScoreHandler) Get(c *gin.Context) {
	sc, err := h.lib.GetScore(c.Request.Context(), c.Param("id"))
	if errors.Is(err, library.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		return
	}
	if err != nil {
		logger.Error("score fetch failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load score"})
		return
	}
	c.JSON(http.StatusOK, sc)
}

// List returns the full score catalogue.
func (h *ScoreHandler) List(c *gin.Context) {
	scores, err := h.lib.ListScores(c.Request.Context())
	if err != nil {
		logger.Error("score list failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores, "count": len(scores)})
}

// Validate runs the structural validators without persisting anything.
func (h *ScoreHandler) Validate(c *gin.Context) {
	var sc notation.Score
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := notation.ValidateScore(sc)
	c.JSON(http.StatusOK, gin.H{
		"valid":    result.OK(),
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}

// ToScore converts a legacy flat document into the multi-voice model.
func (h *ScoreHandler) ToScore(c *gin.Context) {
	var doc convert.FlatDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, warnings := convert.FlatToScore(doc)
	c.JSON(http.StatusOK, gin.H{"score": sc, "warnings": warnings})
}

// ToFlat flattens a multi-voice score into the legacy document.
func (h *ScoreHandler) ToFlat(c *gin.Context) {
	var sc notation.Score
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, warnings := convert.ScoreToFlat(sc)
	c.JSON(http.StatusOK, gin.H{"document": doc, "warnings": warnings})
}

// ExtractVoice returns the sub-score for one voice of a saved score.
func (h *ScoreHandler) ExtractVoice(c *gin.Context) {
	sc, err := h.lib.GetScore(c.Request.Context(), c.Param("id"))
	if errors.Is(err, library.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Score not found"})
		return
	}
	if err != nil {
		logger.Error("score fetch failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load score"})
		return
	}

	c.JSON(http.StatusOK, convert.ExtractVoice(*sc, c.Param("voiceId")))
}
