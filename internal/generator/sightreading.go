package generator

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/theory"
)

// sightReadingDurations lists the note values drawn from at each
// difficulty band. Reading material mixes values rather than drilling
// one, so these are pools, not single durations.
func sightReadingDurations(difficulty int) []notation.Duration {
	switch {
	case difficulty <= 3:
		return []notation.Duration{notation.Half, notation.Quarter}
	case difficulty <= 6:
		return []notation.Duration{notation.Half, notation.Quarter, notation.Eighth}
	default:
		return []notation.Duration{notation.Quarter, notation.Eighth, notation.Sixteenth}
	}
}

// generateSightReading produces less patterned material for reading
// practice: mostly stepwise motion with occasional leaps and rests,
// under the same key/range/clef constraints as the technique
// generators. The note stream is drawn from a PRNG seeded by the
// parameters, so identical requests reproduce identical exercises.
func generateSightReading(p Params) ([]notation.Measure, error) {
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

	// Enumerate every in-range scale pitch once; the walk indexes into
	// this ladder.
	type rung struct {
		letter string
		midi   int
	}
	var ladder []rung
	for oct := 0; ; oct++ {
		added := false
		for i := range letters {
			midi := root + 12*oct + intervals[i]
			if midi < lo {
				continue
			}
			if midi > hi {
				break
			}
			ladder = append(ladder, rung{letter: letters[i], midi: midi})
			added = true
		}
		if !added || root+12*(oct+1) > hi {
			break
		}
	}
	if len(ladder) == 0 {
		return nil, &ValidationError{Violations: []string{
			"no scale pitches inside the playable range",
		}}
	}

	rng := rand.New(rand.NewSource(seedFromParams(p)))
	durations := sightReadingDurations(p.Difficulty)
	pos := len(ladder) / 2

	b := newMeasureBuilder(p)
	for !b.full() {
		remaining := b.capacity - b.cursor

		var candidates []notation.Duration
		for _, d := range durations {
			if d.Value() <= remaining+notation.DurationTolerance {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			b.closeMeasure()
			continue
		}
		dur := candidates[rng.Intn(len(candidates))]

		// Roughly one event in ten is a rest.
		if rng.Intn(10) == 0 {
			b.add(notation.Note{
				Keys:     []string{restKey(p.Clef)},
				Duration: dur,
				IsRest:   true,
			})
			continue
		}

		// Mostly stepwise: steps of one rung dominate, with the
		// occasional third or fourth.
		step := 1
		switch rng.Intn(10) {
		case 0, 1:
			step = 2
		case 2:
			step = 3
		}
		if rng.Intn(2) == 0 {
			step = -step
		}
		pos += step
		if pos < 0 {
			pos = 0
		}
		if pos >= len(ladder) {
			pos = len(ladder) - 1
		}

		b.add(notation.Note{
			Keys:     []string{theory.SpellNote(ladder[pos].letter, ladder[pos].midi)},
			Duration: dur,
		})
	}
	return b.finish(), nil
}

// seedFromParams hashes the generation parameters so the sight-reading
// stream is deterministic per request.
func seedFromParams(p Params) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d/%d|%s|%s|%s|%d|%d|%d|%s",
		p.KeySignature, p.TimeSignature.Beats, p.TimeSignature.BeatUnit,
		p.Clef, p.Range.Lowest, p.Range.Highest,
		p.Difficulty, p.Measures, p.Tempo, p.scaleType())
	return int64(h.Sum64())
}
