// Package library orchestrates the exercise and score catalogue: it
// owns the in-memory caches, persists through the storage collaborator,
// and emits lifecycle events. All state here is explicitly constructed
// and dependency-injected; there are no package-level singletons.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/etudehq/etude-api/internal/events"
	"github.com/etudehq/etude-api/internal/generator"
	"github.com/etudehq/etude-api/internal/logger"
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/store"
)

// ErrNotImplemented marks features that are deliberately stubbed:
// callers get a loud failure, never silently empty data.
var ErrNotImplemented = errors.New("not implemented")

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// DefaultExerciseTTL bounds how long a generated exercise lives before
// the expiry sweep may remove it.
const DefaultExerciseTTL = 30 * 24 * time.Hour

// RepertoireStatus is the practice state of a score in a user's
// repertoire.
type RepertoireStatus struct {
	OwnerID   string    `json:"owner_id"`
	ScoreID   string    `json:"score_id"`
	Status    string    `json:"status"` // "learning", "polishing", "mastered"
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PracticeSession is the record handed to the practice-logging module
// via the event bus; the library itself does not store it.
type PracticeSession struct {
	OwnerID    string    `json:"owner_id"`
	ExerciseID string    `json:"exercise_id,omitempty"`
	ScoreID    string    `json:"score_id,omitempty"`
	DurationS  int       `json:"duration_seconds"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Library is the orchestrating component. Its maps are read-through /
// write-through caches over the Store.
type Library struct {
	store store.Store
	bus   events.Publisher
	ttl   time.Duration
	nowFn func() time.Time

	mu          sync.RWMutex
	exercises   map[string]*notation.GeneratedExercise // key: storage key
	searchCache map[string][]*notation.GeneratedExercise
	repertoire  map[string]*RepertoireStatus // key: storage key
}

// Option customizes Library construction.
type Option func(*Library)

// WithTTL overrides the exercise expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(l *Library) { l.ttl = ttl }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.nowFn = now }
}

// New builds a Library over the given collaborators.
func New(s store.Store, bus events.Publisher, opts ...Option) *Library {
	l := &Library{
		store:       s,
		bus:         bus,
		ttl:         DefaultExerciseTTL,
		nowFn:       time.Now,
		exercises:   make(map[string]*notation.GeneratedExercise),
		searchCache: make(map[string][]*notation.GeneratedExercise),
		repertoire:  make(map[string]*RepertoireStatus),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GenerateExercise runs the full pipeline: generate from parameters,
// validate the result, cache it, persist it, and publish the lifecycle
// event. Parameter violations surface as *generator.ValidationError.
func (l *Library) GenerateExercise(ctx context.Context, ownerID string, p generator.Params) (*notation.GeneratedExercise, error) {
	measures, err := generator.Generate(p)
	if err != nil {
		return nil, err
	}

	// Generated output must satisfy the structural invariants; a
	// failure here is a framework bug, not a caller mistake.
	result := validateMeasures(measures, p.TimeSignature)
	if !result.OK() {
		logger.Error("generated exercise failed validation", errors.New(result.Errors[0].Message),
			logger.Fields{"owner_id": ownerID, "technical_type": p.TechnicalType})
		return nil, fmt.Errorf("generated exercise failed validation: %s", result.Errors[0].Message)
	}

	now := l.nowFn().UTC()
	ex := &notation.GeneratedExercise{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Measures:  measures,
		Params:    paramsMap(p),
		Metadata:  generator.Describe(p),
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl),
	}

	key := store.ExerciseKey(ownerID, ex.ID)
	data, err := store.Encode(ex)
	if err != nil {
		return nil, fmt.Errorf("encode exercise: %w", err)
	}
	if err := l.store.Write(ctx, key, data); err != nil {
		return nil, fmt.Errorf("persist exercise: %w", err)
	}

	l.mu.Lock()
	l.exercises[key] = ex
	l.invalidateSearchLocked(ownerID)
	l.mu.Unlock()

	l.bus.Publish(ctx, events.Event{
		Type:     events.ExerciseGenerated,
		OwnerID:  ownerID,
		EntityID: ex.ID,
		Payload:  ex.Metadata,
	})

	logger.Info("exercise generated", logger.Fields{
		"owner_id": ownerID, "exercise_id": ex.ID,
		"technical_type": p.TechnicalType, "measures": len(measures),
	})
	return ex, nil
}

// PreviewExercise generates without persisting or publishing.
func (l *Library) PreviewExercise(p generator.Params) (*notation.GeneratedExercise, error) {
	measures, err := generator.Generate(p)
	if err != nil {
		return nil, err
	}
	now := l.nowFn().UTC()
	return &notation.GeneratedExercise{
		Measures:  measures,
		Params:    paramsMap(p),
		Metadata:  generator.Describe(p),
		CreatedAt: now,
	}, nil
}

// GetExercise reads through the cache to the store.
func (l *Library) GetExercise(ctx context.Context, ownerID, exerciseID string) (*notation.GeneratedExercise, error) {
	key := store.ExerciseKey(ownerID, exerciseID)

	l.mu.RLock()
	if ex, ok := l.exercises[key]; ok {
		l.mu.RUnlock()
		return ex, nil
	}
	l.mu.RUnlock()

	data, found, err := l.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	var ex notation.GeneratedExercise
	if err := store.Decode(data, &ex); err != nil {
		return nil, fmt.Errorf("decode exercise: %w", err)
	}

	l.mu.Lock()
	l.exercises[key] = &ex
	l.mu.Unlock()
	return &ex, nil
}

// ListExercises returns all of one owner's persisted exercises.
func (l *Library) ListExercises(ctx context.Context, ownerID string) ([]*notation.GeneratedExercise, error) {
	keys, err := l.store.ListKeys(ctx, store.ExercisePrefix(ownerID))
	if err != nil {
		return nil, err
	}

	out := make([]*notation.GeneratedExercise, 0, len(keys))
	for _, key := range keys {
		l.mu.RLock()
		cached, ok := l.exercises[key]
		l.mu.RUnlock()
		if ok {
			out = append(out, cached)
			continue
		}

		data, found, err := l.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue // deleted between list and read
		}
		var ex notation.GeneratedExercise
		if err := store.Decode(data, &ex); err != nil {
			logger.Warn("skipping undecodable exercise", logger.Fields{"key": key})
			continue
		}
		l.mu.Lock()
		l.exercises[key] = &ex
		l.mu.Unlock()
		out = append(out, &ex)
	}
	return out, nil
}

// SearchExercises filters an owner's exercises by a case-insensitive
// match on title, tags and focus areas. Results are cached per
// owner+query until the owner's catalogue changes.
func (l *Library) SearchExercises(ctx context.Context, ownerID, query string) ([]*notation.GeneratedExercise, error) {
	cacheKey := ownerID + "\x00" + strings.ToLower(query)

	l.mu.RLock()
	if hit, ok := l.searchCache[cacheKey]; ok {
		l.mu.RUnlock()
		return hit, nil
	}
	l.mu.RUnlock()

	all, err := l.ListExercises(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var out []*notation.GeneratedExercise
	for _, ex := range all {
		if exerciseMatches(ex, q) {
			out = append(out, ex)
		}
	}

	l.mu.Lock()
	l.searchCache[cacheKey] = out
	l.mu.Unlock()
	return out, nil
}

// DeleteExercise removes the exercise from cache and store and
// publishes the deletion.
func (l *Library) DeleteExercise(ctx context.Context, ownerID, exerciseID string) error {
	key := store.ExerciseKey(ownerID, exerciseID)
	if err := l.store.Delete(ctx, key); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.exercises, key)
	l.invalidateSearchLocked(ownerID)
	l.mu.Unlock()

	l.bus.Publish(ctx, events.Event{
		Type:     events.ExerciseDeleted,
		OwnerID:  ownerID,
		EntityID: exerciseID,
	})
	return nil
}

// SweepExpired removes every persisted exercise past its expiry. It is
// idempotent and re-entrant: it only ever deletes, never mutates, so it
// is safe to run concurrently with reads and with itself.
func (l *Library) SweepExpired(ctx context.Context) (int, error) {
	keys, err := l.store.ListKeys(ctx, "exercise:")
	if err != nil {
		return 0, err
	}

	now := l.nowFn().UTC()
	removed := 0
	for _, key := range keys {
		data, found, err := l.store.Read(ctx, key)
		if err != nil {
			return removed, err
		}
		if !found {
			continue
		}
		var ex notation.GeneratedExercise
		if err := store.Decode(data, &ex); err != nil {
			logger.Warn("sweep skipping undecodable exercise", logger.Fields{"key": key})
			continue
		}
		if ex.ExpiresAt.IsZero() || ex.ExpiresAt.After(now) {
			continue
		}

		if err := l.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		l.mu.Lock()
		delete(l.exercises, key)
		l.invalidateSearchLocked(ex.OwnerID)
		l.mu.Unlock()

		l.bus.Publish(ctx, events.Event{
			Type:     events.ExerciseDeleted,
			OwnerID:  ex.OwnerID,
			EntityID: ex.ID,
		})
		removed++
	}

	if removed > 0 {
		logger.Info("expiry sweep removed exercises", logger.Fields{"count": removed})
	}
	return removed, nil
}

// Close releases the underlying store.
func (l *Library) Close() error {
	return l.store.Close()
}

// invalidateSearchLocked drops cached search results for an owner.
// Callers hold l.mu.
func (l *Library) invalidateSearchLocked(ownerID string) {
	prefix := ownerID + "\x00"
	for k := range l.searchCache {
		if strings.HasPrefix(k, prefix) {
			delete(l.searchCache, k)
		}
	}
}

func exerciseMatches(ex *notation.GeneratedExercise, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(ex.Metadata.Title), q) {
		return true
	}
	for _, t := range ex.Metadata.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, f := range ex.Metadata.FocusAreas {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// validateMeasures wraps generated measures in a minimal score so the
// full bottom-up validation applies.
func validateMeasures(measures []notation.Measure, ts notation.TimeSignature) notation.Result {
	staffIDs := map[string]bool{}
	for _, m := range measures {
		for _, s := range m.Staves {
			staffIDs[s.ID] = true
		}
	}
	var ids []string
	for id := range staffIDs {
		ids = append(ids, id)
	}

	sc := notation.Score{
		Title:    "generated",
		Parts:    []notation.Part{{ID: "part1", Name: "Generated", StaffIDs: ids}},
		Measures: measures,
	}
	// First measure already declares the time signature; seed it anyway
	// so single-measure slices validate under the right capacity.
	if len(sc.Measures) > 0 && sc.Measures[0].TimeSignature == nil {
		t := ts
		sc.Measures[0].TimeSignature = &t
	}
	return notation.ValidateScore(sc)
}

// paramsMap preserves the generation parameters on the persisted
// artifact for reproducibility.
func paramsMap(p generator.Params) map[string]any {
	m := map[string]any{
		"key_signature":  p.KeySignature,
		"time_signature": fmt.Sprintf("%d/%d", p.TimeSignature.Beats, p.TimeSignature.BeatUnit),
		"clef":           string(p.Clef),
		"range_lowest":   p.Range.Lowest,
		"range_highest":  p.Range.Highest,
		"difficulty":     p.Difficulty,
		"measures":       p.Measures,
		"tempo":          p.Tempo,
		"technical_type": p.TechnicalType,
	}
	if p.ScaleType != "" {
		m["scale_type"] = p.ScaleType
	}
	if p.ArpeggioType != "" {
		m["arpeggio_type"] = p.ArpeggioType
	}
	if len(p.HanonPattern) > 0 {
		m["hanon_pattern"] = p.HanonPattern
	}
	if p.IncludeDescending {
		m["include_descending"] = true
	}
	if p.Octaves != 0 {
		m["octaves"] = p.Octaves
	}
	return m
}
