package generator

import (
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// arpeggioDuration is the arpeggio family's own difficulty mapping;
// broken-chord work reads harder than stepwise motion, so it stays a
// step coarser than the scale mapping.
func arpeggioDuration(difficulty int) notation.Duration {
	switch {
	case difficulty <= 3:
		return notation.Quarter
	case difficulty <= 7:
		return notation.Eighth
	default:
		return notation.Sixteenth
	}
}

// generateArpeggio has the same shape as the scale generator but walks
// chord tones of the requested quality instead of scale degrees.
func generateArpeggio(p Params) ([]notation.Measure, error) {
	pitches, err := arpeggioPitches(p)
	if err != nil {
		return nil, err
	}

	dur := arpeggioDuration(p.Difficulty)
	b := newMeasureBuilder(p)
	for i, pitch := range pitches {
		if b.full() {
			break
		}
		n := notation.Note{Keys: []string{pitch}, Duration: dur}
		if p.IncludeFingering {
			n.Fingering = chordFingering(p.Instrument, p.arpeggioType(), i)
		}
		b.add(n)
	}
	return b.finish(), nil
}

func arpeggioPitches(p Params) ([]string, error) {
	lo, hi, err := constrainRange(p)
	if err != nil {
		return nil, err
	}

	tonic, _, err := theory.KeyTonic(p.KeySignature)
	if err != nil {
		return nil, err
	}
	letters, err := theory.ChordNotes(tonic, p.arpeggioType())
	if err != nil {
		return nil, err
	}
	intervals, err := theory.ChordIntervals(p.arpeggioType())
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
