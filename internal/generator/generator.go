package generator

import (
	"fmt"

	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// generateFunc is the shared contract every concrete generator
// conforms to: parameters in, ordered measures out.
type generateFunc func(Params) ([]notation.Measure, error)

// generators is the closed strategy table keyed by technical type.
var generators = map[string]generateFunc{
	TypeScale:        generateScale,
	TypeArpeggio:     generateArpeggio,
	TypeHanon:        generateHanon,
	TypeMixed:        generateMixed,
	TypeSightReading: generateSightReading,
}

// Generate validates the parameters and dispatches to the generator
// selected by TechnicalType. The returned measures always number
// exactly p.Measures.
func Generate(p Params) ([]notation.Measure, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fn, ok := generators[p.TechnicalType]
	if !ok {
		return nil, &ValidationError{Violations: []string{
			fmt.Sprintf("unknown technical type %q", p.TechnicalType),
		}}
	}
	return fn(p)
}

// clefRanges maps each clef to its natural MIDI territory.
var clefRanges = map[notation.Clef][2]int{
	notation.ClefTreble: {60, 96}, // c/4 - c/7
	notation.ClefBass:   {36, 72}, // c/2 - c/5
	notation.ClefAlto:   {55, 91}, // g/3 - g/6
	notation.ClefTenor:  {48, 84}, // c/3 - c/6
	notation.ClefGrand:  {36, 96}, // c/2 - c/7
}

// constrainRange intersects the requested pitch range with the clef's
// natural range. An empty intersection is a parameter error, not a
// degenerate exercise.
func constrainRange(p Params) (lo, hi int, err error) {
	rangeLo, err := theory.NoteToMIDI(p.Range.Lowest)
	if err != nil {
		return 0, 0, err
	}
	rangeHi, err := theory.NoteToMIDI(p.Range.Highest)
	if err != nil {
		return 0, 0, err
	}

	clef := clefRanges[p.Clef]
	lo, hi = max(rangeLo, clef[0]), min(rangeHi, clef[1])
	if lo > hi {
		return 0, 0, &ValidationError{Violations: []string{
			fmt.Sprintf("range %s-%s does not overlap the %s clef range",
				p.Range.Lowest, p.Range.Highest, p.Clef),
		}}
	}
	return lo, hi, nil
}

// measureBuilder accumulates notes into measures of fixed capacity,
// rest-padding partial measures and stamping signature metadata on the
// first measure only.
type measureBuilder struct {
	params   Params
	capacity float64
	cursor   float64
	current  []notation.Note
	measures []notation.Measure
}

func newMeasureBuilder(p Params) *measureBuilder {
	return &measureBuilder{
		params:   p,
		capacity: p.TimeSignature.Capacity(),
	}
}

// full reports whether the requested measure count has been produced.
func (b *measureBuilder) full() bool {
	return len(b.measures) >= b.params.Measures
}

// add appends a note at the current cursor. A note that does not fit
// the remaining capacity first closes the measure with rest padding.
func (b *measureBuilder) add(n notation.Note) {
	if b.full() {
		return
	}
	if b.cursor+n.TotalValue() > b.capacity+notation.DurationTolerance {
		b.closeMeasure()
		if b.full() {
			return
		}
	}
	n.Time = b.cursor
	b.current = append(b.current, n)
	b.cursor += n.TotalValue()
	if b.cursor >= b.capacity-notation.DurationTolerance {
		b.closeMeasure()
	}
}

// closeMeasure rest-pads the open measure to capacity and appends it.
func (b *measureBuilder) closeMeasure() {
	gap := b.capacity - b.cursor
	for _, d := range notation.RestsToFill(gap) {
		b.current = append(b.current, notation.Note{
			Keys:     []string{restKey(b.params.Clef)},
			Duration: d,
			Time:     b.cursor,
			IsRest:   true,
		})
		b.cursor += d.Value()
	}
	b.measures = append(b.measures, b.newMeasure(b.current))
	b.current = nil
	b.cursor = 0
}

// finish pads with rest-only measures until exactly the requested count
// exists, renumbers sequentially, and returns the result.
func (b *measureBuilder) finish() []notation.Measure {
	if len(b.current) > 0 && !b.full() {
		b.closeMeasure()
	}
	for !b.full() {
		b.closeMeasure() // empty current: yields a rest-filled measure
	}
	measures := b.measures[:b.params.Measures]
	for i := range measures {
		measures[i].Number = i + 1
	}
	return measures
}

// newMeasure wraps a note list in the single-staff single-voice layout
// exercises use. Only the first measure carries signature metadata.
func (b *measureBuilder) newMeasure(notes []notation.Note) notation.Measure {
	m := notation.Measure{
		Staves: []notation.Staff{{
			ID:   "staff1",
			Clef: b.params.Clef,
			Voices: []notation.Voice{{
				ID:    "main",
				Notes: notes,
			}},
		}},
	}
	if len(b.measures) == 0 {
		ts := b.params.TimeSignature
		m.TimeSignature = &ts
		m.KeySignature = b.params.KeySignature
		m.Tempo = b.params.Tempo
	}
	return m
}

// restKey picks a conventional rest placement pitch for the clef.
func restKey(clef notation.Clef) string {
	if clef == notation.ClefBass {
		return "d/3"
	}
	return "b/4"
}

// tonicMIDI finds the lowest in-range MIDI number of the key's tonic.
func tonicMIDI(tonic string, lo, hi int) (int, error) {
	base, err := theory.NoteToMIDI(tonic + "/0")
	if err != nil {
		return 0, err
	}
	midi := base
	for midi < lo {
		midi += 12
	}
	if midi > hi {
		return 0, &ValidationError{Violations: []string{
			fmt.Sprintf("no %s tonic inside the playable range", tonic),
		}}
	}
	return midi, nil
}
