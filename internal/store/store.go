// Package store is the key-value storage collaborator: a narrow async
// contract with embedded (Badger), relational (Postgres via gorm) and
// in-memory implementations behind it.
package store

import (
	"context"
	"fmt"
)

// Store is the persistence contract the core depends on. Read reports
// absence via the bool, not an error.
type Store interface {
	Write(ctx context.Context, key string, value []byte) error
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Key builders for the scheme used by the library layer.

// ExerciseKey is exercise:{ownerId}:{exerciseId}.
func ExerciseKey(ownerID, exerciseID string) string {
	return fmt.Sprintf("exercise:%s:%s", ownerID, exerciseID)
}

// ExercisePrefix lists all of one owner's exercises.
func ExercisePrefix(ownerID string) string {
	return fmt.Sprintf("exercise:%s:", ownerID)
}

// ScoreKey is score:{scoreId}.
func ScoreKey(scoreID string) string {
	return fmt.Sprintf("score:%s", scoreID)
}

// ScorePrefix lists every persisted score.
func ScorePrefix() string {
	return "score:"
}

// RepertoireKey is repertoire:{ownerId}:{scoreId}.
func RepertoireKey(ownerID, scoreID string) string {
	return fmt.Sprintf("repertoire:%s:%s", ownerID, scoreID)
}

// RepertoirePrefix lists one owner's repertoire records.
func RepertoirePrefix(ownerID string) string {
	return fmt.Sprintf("repertoire:%s:", ownerID)
}
