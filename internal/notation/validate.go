package notation

import (
	"fmt"
	"math"

	"github.com/etudehq/etude-api/internal/theory"
)

// Finding is a single validation observation tied to the entity that
// produced it.
type Finding struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

// Result separates hard errors (structure unusable) from warnings
// (stylistic oddities the caller may accept). Validators never panic
// and never return Go errors for data findings.
type Result struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// OK reports whether the result carries no hard errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(entity, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Entity: entity, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warnf(entity, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Entity: entity, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

var validClefs = map[Clef]bool{
	ClefTreble: true, ClefBass: true, ClefAlto: true, ClefTenor: true, ClefGrand: true,
}

var validBarLines = map[BarLine]bool{
	"": true, BarSingle: true, BarDouble: true, BarEnd: true,
	BarRepeatBegin: true, BarRepeatEnd: true,
}

// Tempo bounds outside which a measure's tempo override is flagged as a
// warning.
const (
	TempoMin = 20
	TempoMax = 300
)

// ValidateNote checks a single note: a rest carries no meaningful keys
// requirement, a sounding note needs at least one well-formed pitch
// string, and the duration class must be known.
func ValidateNote(n Note) Result {
	var r Result
	entity := fmt.Sprintf("note@%.3f", n.Time)

	if !n.Duration.Valid() {
		r.errorf(entity, "unknown duration class %q", n.Duration)
	}
	if n.Dots < 0 || n.Dots > 2 {
		r.errorf(entity, "dot count %d out of range 0-2", n.Dots)
	}
	if n.Time < 0 {
		r.errorf(entity, "negative start time %.3f", n.Time)
	}

	if !n.IsRest {
		if len(n.Keys) == 0 {
			r.errorf(entity, "sounding note has no pitches")
		}
		for _, k := range n.Keys {
			if _, err := theory.ParsePitch(k); err != nil {
				r.errorf(entity, "bad pitch %q: %v", k, err)
			}
		}
	}
	return r
}

// ValidateVoice aggregates note findings, warns when notes are out of
// chronological order, and checks the voice's total duration against
// the governing time signature's capacity.
func ValidateVoice(v Voice, ts TimeSignature) Result {
	var r Result
	entity := "voice:" + v.ID

	if v.ID == "" {
		r.errorf("voice", "voice id is empty")
	}

	prev := math.Inf(-1)
	for _, n := range v.Notes {
		r.merge(ValidateNote(n))
		if n.Time < prev {
			r.warnf(entity, "note at %.3f starts before preceding note at %.3f", n.Time, prev)
		}
		prev = n.Time
	}

	if len(v.Notes) > 0 && ts.Valid() && !isWholeMeasureRest(v) {
		want := ts.Capacity()
		got := v.TotalDuration()
		if math.Abs(got-want) > DurationTolerance {
			r.errorf(entity, "total duration %.3f does not match time signature capacity %.3f", got, want)
		}
	}
	return r
}

// By engraving convention a lone whole rest stands for a full measure
// in any meter, so its nominal four-beat value is exempt from the
// capacity check.
func isWholeMeasureRest(v Voice) bool {
	return len(v.Notes) == 1 && v.Notes[0].IsRest &&
		v.Notes[0].Duration == Whole && v.Notes[0].Dots == 0
}

// ValidateStaff aggregates voice findings and checks voice-id
// uniqueness and a valid clef.
func ValidateStaff(s Staff, ts TimeSignature) Result {
	var r Result
	entity := "staff:" + s.ID

	if s.ID == "" {
		r.errorf("staff", "staff id is empty")
	}
	if !validClefs[s.Clef] {
		r.errorf(entity, "invalid clef %q", s.Clef)
	}

	seen := map[string]bool{}
	for _, v := range s.Voices {
		if seen[v.ID] {
			r.errorf(entity, "duplicate voice id %q", v.ID)
		}
		seen[v.ID] = true
		r.merge(ValidateVoice(v, ts))
	}
	return r
}

// ValidatePart checks the staff list is non-empty and MIDI metadata is
// in range.
func ValidatePart(p Part) Result {
	var r Result
	entity := "part:" + p.ID

	if p.ID == "" {
		r.errorf("part", "part id is empty")
	}
	if len(p.StaffIDs) == 0 {
		r.errorf(entity, "part references no staves")
	}
	if p.MidiProgram != nil && (*p.MidiProgram < 0 || *p.MidiProgram > 127) {
		r.errorf(entity, "midi program %d out of range 0-127", *p.MidiProgram)
	}
	if p.MidiVolume != nil && (*p.MidiVolume < 0 || *p.MidiVolume > 127) {
		r.errorf(entity, "midi volume %d out of range 0-127", *p.MidiVolume)
	}
	if p.MidiPan != nil && (*p.MidiPan < -64 || *p.MidiPan > 63) {
		r.errorf(entity, "midi pan %d out of range -64..63", *p.MidiPan)
	}
	return r
}

// ValidateMeasure aggregates staff findings under the governing time
// signature (the measure's own override, if any, else the carried one),
// checks the bar-line enum, and warns on tempo overrides outside
// 20-300 BPM.
func ValidateMeasure(m Measure, governing TimeSignature) Result {
	var r Result
	entity := fmt.Sprintf("measure:%d", m.Number)

	ts := governing
	if m.TimeSignature != nil {
		ts = *m.TimeSignature
		if !ts.Valid() {
			r.errorf(entity, "invalid time signature %d/%d", ts.Beats, ts.BeatUnit)
		}
	}
	if !validBarLines[m.BarLine] {
		r.errorf(entity, "invalid bar line %q", m.BarLine)
	}
	if m.Tempo != 0 && (m.Tempo < TempoMin || m.Tempo > TempoMax) {
		r.warnf(entity, "tempo %d outside %d-%d BPM", m.Tempo, TempoMin, TempoMax)
	}
	if m.KeySignature != "" {
		if _, err := theory.KeyAlterations(m.KeySignature); err != nil {
			r.errorf(entity, "bad key signature %q: %v", m.KeySignature, err)
		}
	}

	for _, s := range m.Staves {
		r.merge(ValidateStaff(s, ts))
	}
	return r
}

// ValidateScore composes everything bottom-up: part and measure
// findings, the cross-check that every staff id referenced by a part
// exists in every measure, and measure-number monotonicity as a
// warning.
func ValidateScore(sc Score) Result {
	var r Result

	for _, p := range sc.Parts {
		r.merge(ValidatePart(p))
	}

	// Time signature overrides carry forward until redeclared.
	governing := TimeSignature{Beats: 4, BeatUnit: 4}
	prevNumber := 0
	for _, m := range sc.Measures {
		r.merge(ValidateMeasure(m, governing))
		if m.TimeSignature != nil && m.TimeSignature.Valid() {
			governing = *m.TimeSignature
		}
		if m.Number <= prevNumber {
			r.warnf(fmt.Sprintf("measure:%d", m.Number),
				"measure number %d not greater than preceding %d", m.Number, prevNumber)
		}
		prevNumber = m.Number
	}

	// Every part's staff refs must resolve in every measure.
	for _, p := range sc.Parts {
		for _, staffID := range p.StaffIDs {
			for _, m := range sc.Measures {
				found := false
				for _, s := range m.Staves {
					if s.ID == staffID {
						found = true
						break
					}
				}
				if !found {
					r.errorf("part:"+p.ID,
						"staff %q missing from measure %d", staffID, m.Number)
				}
			}
		}
	}

	if sc.Metadata.Difficulty != 0 && (sc.Metadata.Difficulty < 1 || sc.Metadata.Difficulty > 10) {
		r.errorf("score", "difficulty %d out of range 1-10", sc.Metadata.Difficulty)
	}
	return r
}
