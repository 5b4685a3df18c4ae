package notation

import "math"

// DurationTolerance is the float slack used when comparing accumulated
// note durations against a measure's time-signature capacity.
const DurationTolerance = 1e-3

// durationValues maps each duration class to its length in quarter-note
// units.
var durationValues = map[Duration]float64{
	Whole:        4,
	Half:         2,
	Quarter:      1,
	Eighth:       0.5,
	Sixteenth:    0.25,
	ThirtySecond: 0.125,
}

// Value returns the duration's length in quarter-note units, or 0 for
// an unknown class.
func (d Duration) Value() float64 {
	return durationValues[d]
}

// Valid reports whether d is a known duration class.
func (d Duration) Valid() bool {
	_, ok := durationValues[d]
	return ok
}

// TotalValue returns the note's duration in quarter-note units with the
// dot multiplier applied (one dot = 1.5x, two dots = 1.75x, ...).
func (n Note) TotalValue() float64 {
	return n.Duration.Value() * dotMultiplier(n.Dots)
}

func dotMultiplier(dots int) float64 {
	if dots <= 0 {
		return 1
	}
	return 2 - math.Pow(2, -float64(dots))
}

// Capacity returns the measure length implied by the time signature, in
// quarter-note units: beats x 4/unit. 4/4 -> 4, 6/8 -> 3, 3/4 -> 3.
func (ts TimeSignature) Capacity() float64 {
	if ts.BeatUnit == 0 {
		return 0
	}
	return float64(ts.Beats) * 4 / float64(ts.BeatUnit)
}

// Valid reports whether the time signature has positive, sane fields.
func (ts TimeSignature) Valid() bool {
	switch ts.BeatUnit {
	case 1, 2, 4, 8, 16, 32:
	default:
		return false
	}
	return ts.Beats > 0 && ts.Beats <= 32
}

// TotalDuration sums the durations of a voice's notes in quarter-note
// units.
func (v Voice) TotalDuration() float64 {
	total := 0.0
	for _, n := range v.Notes {
		total += n.TotalValue()
	}
	return total
}

// restDescending lists the rest classes tried, largest first, when
// padding a partially-filled measure.
var restDescending = []Duration{Whole, Half, Quarter, Eighth, Sixteenth}

// RestsToFill greedily decomposes a gap (in quarter-note units) into
// the largest rest values that exactly fill it: whole, then half, then
// quarter, eighth, sixteenth. Residue below the tolerance is dropped.
func RestsToFill(gap float64) []Duration {
	var rests []Duration
	for _, d := range restDescending {
		for gap >= d.Value()-DurationTolerance {
			rests = append(rests, d)
			gap -= d.Value()
		}
	}
	return rests
}
