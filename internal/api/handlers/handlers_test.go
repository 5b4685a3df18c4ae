package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etudehq/etude-api/internal/api"
	"github.com/etudehq/etude-api/internal/config"
	"github.com/etudehq/etude-api/internal/events"
	"github.com/etudehq/etude-api/internal/library"
	"github.com/etudehq/etude-api/internal/store"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewBus()
	lib := library.New(store.NewMemoryStore(), bus)
	t.Cleanup(func() {
		_ = lib.Close()
		bus.Close()
	})

	cfg := &config.Config{AuthMode: "none"}
	return api.SetupRouter(lib, cfg, "test")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "test-user")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validExerciseRequest() map[string]any {
	return map[string]any{
		"key_signature":  "c",
		"time_signature": map[string]int{"beats": 4, "beat_unit": 4},
		"clef":           "treble",
		"range":          map[string]string{"lowest": "c/4", "highest": "c/6"},
		"difficulty":     5,
		"measures":       2,
		"tempo":          120,
		"technical_type": "scale",
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "test", resp["version"])
}

func TestGenerateExerciseEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/exercises", validExerciseRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ex struct {
		ID       string `json:"id"`
		OwnerID  string `json:"owner_id"`
		Measures []any  `json:"measures"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ex))
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, "test-user", ex.OwnerID)
	assert.Len(t, ex.Measures, 2)
	assert.Equal(t, "C Major Scale", ex.Metadata.Title)
}

func TestGenerateExerciseInvalidParams(t *testing.T) {
	router := setupTestRouter(t)

	body := validExerciseRequest()
	body["difficulty"] = 0
	body["tempo"] = 1000

	w := doJSON(t, router, "POST", "/api/v1/exercises", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Violations, 2)
}

func TestPreviewExerciseEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/exercises/preview", validExerciseRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ex struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ex))
	assert.Empty(t, ex.ID, "preview must not persist")
}

func TestExerciseGetListDelete(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/exercises", validExerciseRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "GET", "/api/v1/exercises/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/exercises", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Count)

	// Search misses stay searchable.
	w = doJSON(t, router, "GET", "/api/v1/exercises?q=nocturne", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 0, listResp.Count)

	w = doJSON(t, router, "DELETE", "/api/v1/exercises/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/exercises/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendationsNotImplemented(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "GET", "/api/v1/recommendations", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func validScoreRequest() map[string]any {
	return map[string]any{
		"title": "Minuet",
		"parts": []map[string]any{{
			"id": "part1", "name": "Piano", "staff_ids": []string{"staff1"},
		}},
		"measures": []map[string]any{{
			"number": 1,
			"staves": []map[string]any{{
				"id":   "staff1",
				"clef": "treble",
				"voices": []map[string]any{{
					"id": "main",
					"notes": []map[string]any{{
						"keys":     []string{"c/4"},
						"duration": "w",
						"time":     0,
					}},
				}},
			}},
		}},
	}
}

func TestSaveAndGetScoreEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/scores", validScoreRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, router, "GET", "/api/v1/scores/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/scores", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Count  int `json:"count"`
		Scores []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, created.ID, listed.Scores[0].ID)
	assert.Equal(t, "Minuet", listed.Scores[0].Title)

	w = doJSON(t, router, "GET", "/api/v1/scores/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveScoreRejectsInvalid(t *testing.T) {
	router := setupTestRouter(t)

	body := validScoreRequest()
	body["parts"] = []map[string]any{{
		"id": "part1", "name": "Piano", "staff_ids": []string{"ghost"},
	}}

	w := doJSON(t, router, "POST", "/api/v1/scores", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp struct {
		Errors []struct {
			Entity  string `json:"entity"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Errors)
}

func TestValidateScoreEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/scores/validate", validScoreRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
}

func TestConvertEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	flat := map[string]any{
		"title": "Legacy",
		"measures": []map[string]any{{
			"clef":           "treble",
			"time_signature": map[string]int{"beats": 4, "beat_unit": 4},
			"notes": []map[string]any{{
				"keys":     []string{"c/4"},
				"duration": "w",
				"time":     0,
			}},
		}},
	}

	w := doJSON(t, router, "POST", "/api/v1/convert/to-score", flat)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var toScoreResp struct {
		Score    json.RawMessage `json:"score"`
		Warnings []string        `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toScoreResp))
	assert.Empty(t, toScoreResp.Warnings)

	// Feed the converted score straight back.
	var score map[string]any
	require.NoError(t, json.Unmarshal(toScoreResp.Score, &score))
	w = doJSON(t, router, "POST", "/api/v1/convert/to-flat", score)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var toFlatResp struct {
		Document struct {
			Title    string `json:"title"`
			Measures []struct {
				Notes []struct {
					Keys []string `json:"keys"`
				} `json:"notes"`
			} `json:"measures"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toFlatResp))
	assert.Equal(t, "Legacy", toFlatResp.Document.Title)
	require.Len(t, toFlatResp.Document.Measures, 1)
	require.Len(t, toFlatResp.Document.Measures[0].Notes, 1)
	assert.Equal(t, []string{"c/4"}, toFlatResp.Document.Measures[0].Notes[0].Keys)
}

func TestExtractVoiceEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/scores", validScoreRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "POST", "/api/v1/scores/"+created.ID+"/extract/main", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var extracted struct {
		Measures []struct {
			Staves []struct {
				Voices []struct {
					ID string `json:"id"`
				} `json:"voices"`
			} `json:"staves"`
		} `json:"measures"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &extracted))
	require.Len(t, extracted.Measures, 1)
	require.Len(t, extracted.Measures[0].Staves, 1)
	assert.Equal(t, "main", extracted.Measures[0].Staves[0].Voices[0].ID)

	w = doJSON(t, router, "POST", "/api/v1/scores/missing/extract/main", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepertoireEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/repertoire", map[string]any{
		"score_id": "s1",
		"status":   "learning",
		"notes":    "slow practice first",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", "/api/v1/repertoire", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count      int `json:"count"`
		Repertoire []struct {
			ScoreID string `json:"score_id"`
			Status  string `json:"status"`
		} `json:"repertoire"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "s1", resp.Repertoire[0].ScoreID)
	assert.Equal(t, "learning", resp.Repertoire[0].Status)

	// Missing required fields bind-fail.
	w = doJSON(t, router, "POST", "/api/v1/repertoire", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPracticeSessionEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/practice-sessions", map[string]any{
		"exercise_id":      "ex1",
		"duration_seconds": 900,
	})
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// Neither an exercise nor a score id is a bad request.
	w = doJSON(t, router, "POST", "/api/v1/practice-sessions", map[string]any{
		"duration_seconds": 900,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
