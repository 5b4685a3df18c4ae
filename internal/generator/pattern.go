package generator

import (
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// defaultHanonPattern is the classic first-exercise contour as 1-based
// scale-degree offsets.
var defaultHanonPattern = []int{1, 3, 5, 6, 5, 3}

// generateHanon applies an integer scale-degree pattern starting from
// each of the seven scale degrees in turn, always at sixteenth-note
// duration, stopping as soon as the requested measure count is filled.
func generateHanon(p Params) ([]notation.Measure, error) {
	lo, hi, err := constrainRange(p)
	if err != nil {
		return nil, err
	}

	tonic, _, err := theory.KeyTonic(p.KeySignature)
	if err != nil {
		return nil, err
	}
	letters, err := theory.ScaleNotes(tonic, p.scaleType())
	if err != nil {
		return nil, err
	}
	intervals, err := theory.ScaleIntervals(p.scaleType())
	if err != nil {
		return nil, err
	}

	pattern := p.HanonPattern
	if len(pattern) == 0 {
		pattern = defaultHanonPattern
	}

	root, err := tonicMIDI(tonic, lo, hi)
	if err != nil {
		return nil, err
	}

	b := newMeasureBuilder(p)
	// The start cap guards against degenerate ranges where every
	// candidate note lands outside the playable window; finish() then
	// rest-pads whatever is missing.
	for start := 0; !b.full() && start < p.Measures*64; start++ {
		degreeBase := start % len(letters)
		octaveBase := start / len(letters)
		for _, offset := range pattern {
			if b.full() {
				break
			}
			degree := degreeBase + offset - 1
			octave := octaveBase + degree/len(letters)
			idx := degree % len(letters)

			midi := root + 12*octave + intervals[idx]
			if midi > hi {
				// Wrap back inside the playable range.
				midi -= 12 * (1 + (midi-hi)/12)
				if midi < lo {
					continue
				}
			}
			b.add(notation.Note{
				Keys:     []string{theory.SpellNote(letters[idx], midi)},
				Duration: notation.Sixteenth,
			})
		}
	}
	return b.finish(), nil
}
