package convert

import (
	"fmt"
	"time"

	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// FlatToScore converts a legacy flat document into the multi-voice
// score model. A document declaring a grand-staff clef anywhere is
// split into treble/bass staves by octave; everything else lands in a
// single staff with one "main" voice. Returns the score and any
// conversion warnings.
func FlatToScore(doc FlatDocument) (notation.Score, []string) {
	var warnings []string

	grand := false
	for _, m := range doc.Measures {
		if m.Clef == notation.ClefGrand {
			grand = true
			break
		}
	}

	var measures []notation.Measure
	for i, fm := range doc.Measures {
		number := fm.Number
		if number == 0 {
			number = i + 1
		}

		m := notation.Measure{
			Number:        number,
			TimeSignature: copyTimeSignature(fm.TimeSignature),
			KeySignature:  fm.KeySignature,
			Tempo:         fm.Tempo,
			Dynamics:      fm.Dynamics,
			RehearsalMark: fm.RehearsalMark,
			BarLine:       fm.BarLine,
			RepeatCount:   fm.RepeatCount,
		}

		if grand {
			m.Staves = splitGrandStaff(fm, number, &warnings)
		} else {
			clef := fm.Clef
			if clef == "" {
				clef = notation.ClefTreble
			}
			m.Staves = []notation.Staff{{
				ID:   staffMain,
				Clef: clef,
				Voices: []notation.Voice{{
					ID:    voiceMain,
					Notes: flatNotes(fm.Notes, number, &warnings),
				}},
			}}
		}
		measures = append(measures, m)
	}

	part := notation.Part{ID: "part1", Name: "Part 1", StaffIDs: []string{staffMain}}
	if grand {
		part = notation.Part{
			ID:         "part1",
			Name:       "Piano",
			Instrument: "piano",
			StaffIDs:   []string{staffTreble, staffBass},
		}
	}

	now := time.Now().UTC()
	return notation.Score{
		Title:    doc.Title,
		Composer: doc.Composer,
		Parts:    []notation.Part{part},
		Measures: measures,
		Metadata: notation.ScoreMetadata{
			CreatedAt:  now,
			ModifiedAt: now,
			Source:     "converted",
		},
	}, warnings
}

// splitGrandStaff routes each note of a grand-staff measure to the
// right-hand voice when its first pitch sits at or above the split
// octave, else to the left hand. Rests default to the right hand.
func splitGrandStaff(fm FlatMeasure, number int, warnings *[]string) []notation.Staff {
	var right, left []notation.Note
	for _, fn := range fm.Notes {
		n, ok := toModelNote(fn, number, warnings)
		if !ok {
			continue
		}
		if fn.IsRest {
			right = append(right, n)
			continue
		}

		p, err := theory.ParsePitch(fn.Keys[0])
		if err != nil {
			// toModelNote already vetted the keys; treat as right hand.
			right = append(right, n)
			continue
		}
		if p.Octave >= grandStaffSplitOctave {
			right = append(right, n)
		} else {
			left = append(left, n)
		}
	}

	return []notation.Staff{
		{
			ID:     staffTreble,
			Clef:   notation.ClefTreble,
			Voices: []notation.Voice{{ID: voiceRight, Stem: notation.StemUp, Notes: right}},
		},
		{
			ID:     staffBass,
			Clef:   notation.ClefBass,
			Voices: []notation.Voice{{ID: voiceLeft, Stem: notation.StemDown, Notes: left}},
		},
	}
}

// flatNotes converts a flat note list, skipping malformed entries with
// a warning.
func flatNotes(notes []FlatNote, measure int, warnings *[]string) []notation.Note {
	out := make([]notation.Note, 0, len(notes))
	for _, fn := range notes {
		if n, ok := toModelNote(fn, measure, warnings); ok {
			out = append(out, n)
		}
	}
	return out
}

// toModelNote maps a single flat note into the model, rejecting notes
// with no usable pitch content.
func toModelNote(fn FlatNote, measure int, warnings *[]string) (notation.Note, bool) {
	if !fn.Duration.Valid() {
		*warnings = append(*warnings,
			fmt.Sprintf("measure %d: skipped note with unknown duration %q", measure, fn.Duration))
		return notation.Note{}, false
	}
	if !fn.IsRest {
		if len(fn.Keys) == 0 {
			*warnings = append(*warnings,
				fmt.Sprintf("measure %d: skipped note with no pitches", measure))
			return notation.Note{}, false
		}
		for _, k := range fn.Keys {
			if _, err := theory.ParsePitch(k); err != nil {
				*warnings = append(*warnings,
					fmt.Sprintf("measure %d: skipped note with bad pitch %q", measure, k))
				return notation.Note{}, false
			}
		}
	}

	return notation.Note{
		Keys:         append([]string(nil), fn.Keys...),
		Duration:     fn.Duration,
		Dots:         fn.Dots,
		Time:         fn.Time,
		IsRest:       fn.IsRest,
		Accidental:   fn.Accidental,
		Articulation: fn.Articulation,
		Dynamic:      fn.Dynamic,
		Fingering:    fn.Fingering,
	}, true
}

func copyTimeSignature(ts *notation.TimeSignature) *notation.TimeSignature {
	if ts == nil {
		return nil
	}
	out := *ts
	return &out
}
