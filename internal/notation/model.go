// Package notation holds the multi-voice score data model and its
// structural validators. The Score/Measure/Staff/Voice/Note graph is a
// pure value tree: no back-references, no shared mutable state, and
// every operation on it returns fresh trees rather than mutating in
// place, so concurrent callers need no locking.
package notation

import "time"

// Duration is a rhythmic duration class.
type Duration string

const (
	Whole        Duration = "w"
	Half         Duration = "h"
	Quarter      Duration = "q"
	Eighth       Duration = "8"
	Sixteenth    Duration = "16"
	ThirtySecond Duration = "32"
)

// Clef identifies a staff clef and its natural pitch territory.
type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
	ClefAlto   Clef = "alto"
	ClefTenor  Clef = "tenor"
	ClefGrand  Clef = "grand_staff"
)

// BarLine enumerates bar-line styles on a measure.
type BarLine string

const (
	BarSingle      BarLine = "single"
	BarDouble      BarLine = "double"
	BarEnd         BarLine = "end"
	BarRepeatBegin BarLine = "repeat_begin"
	BarRepeatEnd   BarLine = "repeat_end"
)

// StemDirection is a voice's preferred stem direction.
type StemDirection string

const (
	StemAuto StemDirection = "auto"
	StemUp   StemDirection = "up"
	StemDown StemDirection = "down"
)

// TimeSignature is beats per measure over a beat unit (4/4, 6/8, ...).
type TimeSignature struct {
	Beats    int `json:"beats"`
	BeatUnit int `json:"beat_unit"`
}

// Note is the atomic musical event. A chord is one Note carrying
// multiple pitch strings in Keys. Time is the start offset from the
// beginning of the measure, in quarter-note units.
type Note struct {
	Keys     []string `json:"keys"` // wire pitch strings, e.g. "f#/5"
	Duration Duration `json:"duration"`
	Dots     int      `json:"dots,omitempty"`
	Time     float64  `json:"time"`
	IsRest   bool     `json:"is_rest,omitempty"`

	// Decorations, all optional and advisory.
	Accidental   string   `json:"accidental,omitempty"`
	Tie          string   `json:"tie,omitempty"` // "start", "stop", "both"
	Articulation string   `json:"articulation,omitempty"`
	Dynamic      string   `json:"dynamic,omitempty"`
	Fingering    string   `json:"fingering,omitempty"`
	Grace        bool     `json:"grace,omitempty"`
	Ornaments    []string `json:"ornaments,omitempty"`
}

// Voice is an independent melodic line of time-ordered notes.
type Voice struct {
	ID    string        `json:"id"`
	Name  string        `json:"name,omitempty"`
	Stem  StemDirection `json:"stem,omitempty"`
	Notes []Note        `json:"notes"`
}

// Staff is a clef-bound container of voices. Voice ids are unique
// within one staff.
type Staff struct {
	ID     string  `json:"id"`
	Clef   Clef    `json:"clef"`
	Voices []Voice `json:"voices"`
}

// Part is one instrument's collection of staves within the score.
type Part struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Instrument string   `json:"instrument,omitempty"`
	StaffIDs   []string `json:"staff_ids"`

	// MIDI metadata; pointers distinguish "unset" from zero.
	MidiProgram *int `json:"midi_program,omitempty"` // 0-127
	MidiVolume  *int `json:"midi_volume,omitempty"`  // 0-127
	MidiPan     *int `json:"midi_pan,omitempty"`     // -64..63
}

// Measure is a fixed-capacity time slice. Override fields apply from
// this measure forward until the next measure that redeclares them.
type Measure struct {
	Number int     `json:"number"` // 1-based
	Staves []Staff `json:"staves"`

	TimeSignature *TimeSignature `json:"time_signature,omitempty"`
	KeySignature  string         `json:"key_signature,omitempty"`
	Tempo         int            `json:"tempo,omitempty"` // BPM
	Dynamics      string         `json:"dynamics,omitempty"`
	RehearsalMark string         `json:"rehearsal_mark,omitempty"`
	BarLine       BarLine        `json:"bar_line,omitempty"`
	RepeatCount   int            `json:"repeat_count,omitempty"`
	Volta         int            `json:"volta,omitempty"`
}

// ScoreMetadata carries provenance and cataloguing info.
type ScoreMetadata struct {
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Source     string    `json:"source,omitempty"` // "generated", "imported", "user"
	Tags       []string  `json:"tags,omitempty"`
	Difficulty int       `json:"difficulty,omitempty"` // 1-10
	DurationS  int       `json:"duration_seconds,omitempty"`
}

// Score is the full multi-part, multi-measure composition.
type Score struct {
	ID        string        `json:"id,omitempty"`
	Title     string        `json:"title"`
	Composer  string        `json:"composer,omitempty"`
	Arranger  string        `json:"arranger,omitempty"`
	Copyright string        `json:"copyright,omitempty"`
	Parts     []Part        `json:"parts"`
	Measures  []Measure     `json:"measures"`
	Metadata  ScoreMetadata `json:"metadata"`
}

// ExerciseMetadata is the human-readable description of a generated
// exercise, derived deterministically from its parameters.
type ExerciseMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FocusAreas  []string `json:"focus_areas,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DurationS   int      `json:"duration_seconds"`
}

// GeneratedExercise is the persisted artifact of one generation run.
// It is cached in memory, written through to the storage collaborator,
// and removed explicitly or by the expiry sweep.
type GeneratedExercise struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Measures  []Measure        `json:"measures"`
	Params    map[string]any   `json:"params"`
	Metadata  ExerciseMetadata `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}
