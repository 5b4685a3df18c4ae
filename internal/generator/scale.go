package generator

import (
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// scaleDurations maps difficulty to the note value used for scale work:
// coarse at low difficulty, fine at high. Difficulty 5 lands on
// eighths.
func scaleDuration(difficulty int) notation.Duration {
	switch {
	case difficulty <= 2:
		return notation.Half
	case difficulty <= 4:
		return notation.Quarter
	case difficulty <= 7:
		return notation.Eighth
	default:
		return notation.Sixteenth
	}
}

// generateScale walks the scale of the key ascending across the
// requested octave count, appends the upper tonic, optionally mirrors
// back down, and fills measures at the difficulty's duration.
func generateScale(p Params) ([]notation.Measure, error) {
	pitches, err := scalePitches(p)
	if err != nil {
		return nil, err
	}

	dur := scaleDuration(p.Difficulty)
	b := newMeasureBuilder(p)
	for i, pitch := range pitches {
		if b.full() {
			break
		}
		n := notation.Note{Keys: []string{pitch}, Duration: dur}
		if p.IncludeFingering {
			n.Fingering = scaleFingering(p.Instrument, p.scaleType(), i)
		}
		b.add(n)
	}
	return b.finish(), nil
}

// scalePitches builds the wire pitch sequence for the scale exercise:
// ascending over p.octaves() octaves plus the upper tonic, mirrored
// when IncludeDescending is set (without repeating the top note).
func scalePitches(p Params) ([]string, error) {
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

	root, err := tonicMIDI(tonic, lo, hi)
	if err != nil {
		return nil, err
	}

	var pitches []string
	for oct := 0; oct < p.octaves(); oct++ {
		for i := range letters {
			midi := root + 12*oct + intervals[i]
			if midi > hi {
				break
			}
			pitches = append(pitches, theory.SpellNote(letters[i], midi))
		}
	}
	// Upper tonic caps the ascent when it still fits the range.
	if top := root + 12*p.octaves(); top <= hi {
		pitches = append(pitches, theory.SpellNote(letters[0], top))
	}

	if p.IncludeDescending && len(pitches) > 1 {
		for i := len(pitches) - 2; i >= 0; i-- {
			pitches = append(pitches, pitches[i])
		}
	}
	return pitches, nil
}
