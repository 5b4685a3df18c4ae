// Package generator synthesizes practice exercises as sequences of
// measures. A fixed strategy table maps each technical type to a
// generation function sharing one skeleton: validate parameters,
// intersect the pitch range with the clef's natural range, fill
// measures to their time-signature capacity, rest-pad the remainder,
// and trim or pad to the requested measure count.
package generator

import (
	"fmt"
	"strings"

	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// Technical types accepted in Params.TechnicalType.
const (
	TypeScale        = "scale"
	TypeArpeggio     = "arpeggio"
	TypeHanon        = "hanon"
	TypeMixed        = "mixed"
	TypeSightReading = "sightreading"
)

// PitchRange bounds an exercise's pitches, inclusive on both ends.
type PitchRange struct {
	Lowest  string `json:"lowest"`
	Highest string `json:"highest"`
}

// Params is the declarative input surface shared by all generators.
// Out-of-range values are rejected by Validate, never clamped; the only
// clamping in the framework is the clef-range intersection.
type Params struct {
	KeySignature  string                 `json:"key_signature"`
	TimeSignature notation.TimeSignature `json:"time_signature"`
	Clef          notation.Clef          `json:"clef"`
	Range         PitchRange             `json:"range"`
	Difficulty    int                    `json:"difficulty"` // 1-10
	Measures      int                    `json:"measures"`
	Tempo         int                    `json:"tempo"` // BPM

	TechnicalType     string `json:"technical_type"`
	ScaleType         string `json:"scale_type,omitempty"`
	ArpeggioType      string `json:"arpeggio_type,omitempty"`
	HanonPattern      []int  `json:"hanon_pattern,omitempty"`
	IncludeDescending bool   `json:"include_descending,omitempty"`
	Octaves           int    `json:"octaves,omitempty"`

	// Fingering is advisory per-note metadata; Instrument selects the
	// fingering convention ("piano" or a simplified position heuristic).
	IncludeFingering bool   `json:"include_fingering,omitempty"`
	Instrument       string `json:"instrument,omitempty"`
}

// ValidationError collects every violated parameter constraint. Callers
// surface the full list so users can correct all fields at once rather
// than discovering them one at a time.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid exercise parameters: " + strings.Join(e.Violations, "; ")
}

const maxMeasures = 500

// Validate checks every constraint and returns a single
// ValidationError naming all violations, or nil.
func (p Params) Validate() error {
	var violations []string

	if p.Difficulty < 1 || p.Difficulty > 10 {
		violations = append(violations, fmt.Sprintf("difficulty %d must be in 1-10", p.Difficulty))
	}
	if p.Measures < 1 {
		violations = append(violations, fmt.Sprintf("measures %d must be positive", p.Measures))
	} else if p.Measures > maxMeasures {
		violations = append(violations, fmt.Sprintf("measures %d exceeds maximum %d", p.Measures, maxMeasures))
	}
	if p.Tempo < notation.TempoMin || p.Tempo > notation.TempoMax {
		violations = append(violations, fmt.Sprintf("tempo %d must be in %d-%d BPM", p.Tempo, notation.TempoMin, notation.TempoMax))
	}
	if !p.TimeSignature.Valid() {
		violations = append(violations, fmt.Sprintf("time signature %d/%d is not valid", p.TimeSignature.Beats, p.TimeSignature.BeatUnit))
	}
	if _, ok := clefRanges[p.Clef]; !ok {
		violations = append(violations, fmt.Sprintf("unknown clef %q", p.Clef))
	}
	if _, err := theory.KeyAlterations(p.KeySignature); err != nil {
		violations = append(violations, fmt.Sprintf("key signature %q is not a standard key", p.KeySignature))
	}

	lo, loErr := theory.NoteToMIDI(p.Range.Lowest)
	hi, hiErr := theory.NoteToMIDI(p.Range.Highest)
	if loErr != nil {
		violations = append(violations, fmt.Sprintf("range lowest %q is not a valid pitch", p.Range.Lowest))
	}
	if hiErr != nil {
		violations = append(violations, fmt.Sprintf("range highest %q is not a valid pitch", p.Range.Highest))
	}
	if loErr == nil && hiErr == nil && lo > hi {
		violations = append(violations, fmt.Sprintf("range lowest %s is above highest %s", p.Range.Lowest, p.Range.Highest))
	}

	if p.Octaves < 0 || p.Octaves > 4 {
		violations = append(violations, fmt.Sprintf("octaves %d must be in 0-4", p.Octaves))
	}
	for _, deg := range p.HanonPattern {
		if deg < 1 || deg > 8 {
			violations = append(violations, fmt.Sprintf("hanon pattern degree %d must be in 1-8", deg))
			break
		}
	}
	if p.ScaleType != "" {
		if _, err := theory.ScaleIntervals(p.ScaleType); err != nil {
			violations = append(violations, fmt.Sprintf("unknown scale type %q", p.ScaleType))
		}
	}
	if p.ArpeggioType != "" {
		if _, err := theory.ChordIntervals(p.ArpeggioType); err != nil {
			violations = append(violations, fmt.Sprintf("unknown arpeggio type %q", p.ArpeggioType))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// scaleType returns the requested scale type or the default.
func (p Params) scaleType() string {
	if p.ScaleType == "" {
		return "major"
	}
	return p.ScaleType
}

// arpeggioType returns the requested chord quality or the default.
func (p Params) arpeggioType() string {
	if p.ArpeggioType == "" {
		return "major"
	}
	return p.ArpeggioType
}

// octaves returns the requested octave span, defaulting to one.
func (p Params) octaves() int {
	if p.Octaves == 0 {
		return 1
	}
	return p.Octaves
}
