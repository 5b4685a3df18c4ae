// Package convert maps between the legacy flat single-voice document
// format and the multi-voice score model. Conversions degrade
// gracefully: malformed notes are skipped with a recorded warning, and
// an all-empty result is replaced with a minimal playable placeholder
// so renderers never receive an empty score.
package convert

import "github.com/etudehq/etude-api/internal/notation"

// FlatNote is the legacy single-stream note: one event per time slot,
// chords as multiple keys on one note.
type FlatNote struct {
	Keys     []string          `json:"keys"`
	Duration notation.Duration `json:"duration"`
	Dots     int               `json:"dots,omitempty"`
	Time     float64           `json:"time"`
	IsRest   bool              `json:"is_rest,omitempty"`

	Accidental   string `json:"accidental,omitempty"`
	Articulation string `json:"articulation,omitempty"`
	Dynamic      string `json:"dynamic,omitempty"`
	Fingering    string `json:"fingering,omitempty"`
}

// FlatMeasure is one measure of the legacy format, carrying its own
// display attributes.
type FlatMeasure struct {
	Number        int                     `json:"number"`
	Clef          notation.Clef           `json:"clef,omitempty"`
	TimeSignature *notation.TimeSignature `json:"time_signature,omitempty"`
	KeySignature  string                  `json:"key_signature,omitempty"`
	Tempo         int                     `json:"tempo,omitempty"`
	Dynamics      string                  `json:"dynamics,omitempty"`
	RehearsalMark string                  `json:"rehearsal_mark,omitempty"`
	BarLine       notation.BarLine        `json:"bar_line,omitempty"`
	RepeatCount   int                     `json:"repeat_count,omitempty"`
	Notes         []FlatNote              `json:"notes"`
}

// FlatDocument is the legacy flat score representation consumed by the
// older renderer.
type FlatDocument struct {
	Title    string        `json:"title,omitempty"`
	Composer string        `json:"composer,omitempty"`
	Measures []FlatMeasure `json:"measures"`
}

// Voice and staff names used on both sides of the conversion.
const (
	voiceMain  = "main"
	voiceRight = "right-hand"
	voiceLeft  = "left-hand"

	staffMain   = "staff1"
	staffTreble = "treble"
	staffBass   = "bass"
)

// grandStaffSplitOctave is the octave at which a note moves to the
// treble staff when splitting a grand-staff document: octave >= 4 goes
// to the right hand, everything below to the left. Rests default to
// treble.
const grandStaffSplitOctave = 4
