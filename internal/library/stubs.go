package library

import (
	"context"
	"fmt"

	"github.com/etudehq/etude-api/internal/notation"
)

// The analysis and interchange surfaces below are intentionally
// unimplemented. They fail loudly with ErrNotImplemented so no caller
// ever mistakes an absent feature for an empty result.

// AssessDifficulty would rate a score 1-10 from its note content.
func (l *Library) AssessDifficulty(_ context.Context, _ *notation.Score) (int, error) {
	return 0, fmt.Errorf("%w: difficulty assessment", ErrNotImplemented)
}

// RecommendExercises would suggest exercises from practice history.
func (l *Library) RecommendExercises(_ context.Context, _ string) ([]*notation.GeneratedExercise, error) {
	return nil, fmt.Errorf("%w: exercise recommendations", ErrNotImplemented)
}

// AnalyzeVoiceLeading would check part-writing across voices.
func (l *Library) AnalyzeVoiceLeading(_ context.Context, _ *notation.Score) (notation.Result, error) {
	return notation.Result{}, fmt.Errorf("%w: voice-leading analysis", ErrNotImplemented)
}

// ImportMusicXML would parse a MusicXML document into a score.
func (l *Library) ImportMusicXML(_ context.Context, _ []byte) (*notation.Score, error) {
	return nil, fmt.Errorf("%w: MusicXML import", ErrNotImplemented)
}

// ExportMusicXML would serialize a score as MusicXML.
func (l *Library) ExportMusicXML(_ context.Context, _ *notation.Score) ([]byte, error) {
	return nil, fmt.Errorf("%w: MusicXML export", ErrNotImplemented)
}
