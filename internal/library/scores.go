package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/etudehq/etude-api/internal/events"
	"github.com/etudehq/etude-api/internal/logger"
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/store"
)

// SaveScore validates and persists a curated multi-voice score,
// assigning an id when the score has none. Structural warnings are
// logged but tolerated; hard errors reject the save.
func (l *Library) SaveScore(ctx context.Context, sc *notation.Score) (notation.Result, error) {
	result := notation.ValidateScore(*sc)
	if !result.OK() {
		return result, fmt.Errorf("score failed validation with %d errors", len(result.Errors))
	}
	for _, w := range result.Warnings {
		logger.Warn("score validation warning", logger.Fields{
			"score_id": sc.ID, "entity": w.Entity, "message": w.Message,
		})
	}

	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	sc.Metadata.ModifiedAt = l.nowFn().UTC()
	if sc.Metadata.CreatedAt.IsZero() {
		sc.Metadata.CreatedAt = sc.Metadata.ModifiedAt
	}

	data, err := store.Encode(sc)
	if err != nil {
		return result, fmt.Errorf("encode score: %w", err)
	}
	if err := l.store.Write(ctx, store.ScoreKey(sc.ID), data); err != nil {
		return result, fmt.Errorf("persist score: %w", err)
	}

	l.bus.Publish(ctx, events.Event{
		Type:     events.ScoreSaved,
		EntityID: sc.ID,
		Payload:  map[string]any{"title": sc.Title},
	})
	return result, nil
}

// GetScore loads a persisted score.
func (l *Library) GetScore(ctx context.Context, scoreID string) (*notation.Score, error) {
	data, found, err := l.store.Read(ctx, store.ScoreKey(scoreID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	var sc notation.Score
	if err := store.Decode(data, &sc); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}
	return &sc, nil
}

// ListScores returns every persisted score. Records that no longer
// decode are skipped with a warning rather than failing the listing.
func (l *Library) ListScores(ctx context.Context) ([]*notation.Score, error) {
	keys, err := l.store.ListKeys(ctx, store.ScorePrefix())
	if err != nil {
		return nil, err
	}

	out := make([]*notation.Score, 0, len(keys))
	for _, key := range keys {
		data, found, err := l.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		var sc notation.Score
		if err := store.Decode(data, &sc); err != nil {
			logger.Warn("skipping undecodable score record", logger.Fields{"key": key})
			continue
		}
		out = append(out, &sc)
	}
	return out, nil
}

// SetRepertoireStatus upserts a practice-status record and publishes
// the change.
func (l *Library) SetRepertoireStatus(ctx context.Context, rs RepertoireStatus) error {
	rs.UpdatedAt = l.nowFn().UTC()

	key := store.RepertoireKey(rs.OwnerID, rs.ScoreID)
	data, err := store.Encode(&rs)
	if err != nil {
		return fmt.Errorf("encode repertoire status: %w", err)
	}
	if err := l.store.Write(ctx, key, data); err != nil {
		return fmt.Errorf("persist repertoire status: %w", err)
	}

	l.mu.Lock()
	l.repertoire[key] = &rs
	l.mu.Unlock()

	l.bus.Publish(ctx, events.Event{
		Type:     events.RepertoireStatusChanged,
		OwnerID:  rs.OwnerID,
		EntityID: rs.ScoreID,
		Payload:  map[string]any{"status": rs.Status},
	})
	return nil
}

// GetRepertoire lists one owner's practice-status records.
func (l *Library) GetRepertoire(ctx context.Context, ownerID string) ([]*RepertoireStatus, error) {
	keys, err := l.store.ListKeys(ctx, store.RepertoirePrefix(ownerID))
	if err != nil {
		return nil, err
	}

	out := make([]*RepertoireStatus, 0, len(keys))
	for _, key := range keys {
		l.mu.RLock()
		cached, ok := l.repertoire[key]
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
			continue
		}
		var rs RepertoireStatus
		if err := store.Decode(data, &rs); err != nil {
			logger.Warn("skipping undecodable repertoire record", logger.Fields{"key": key})
			continue
		}
		l.mu.Lock()
		l.repertoire[key] = &rs
		l.mu.Unlock()
		out = append(out, &rs)
	}
	return out, nil
}

// RecordPracticeSession publishes the session for the practice-logging
// module; the library does not store it.
func (l *Library) RecordPracticeSession(ctx context.Context, ps PracticeSession) {
	if ps.RecordedAt.IsZero() {
		ps.RecordedAt = l.nowFn().UTC()
	}
	entity := ps.ExerciseID
	if entity == "" {
		entity = ps.ScoreID
	}
	l.bus.Publish(ctx, events.Event{
		Type:     events.PracticeSessionRecorded,
		OwnerID:  ps.OwnerID,
		EntityID: entity,
		Payload:  ps,
	})
}
