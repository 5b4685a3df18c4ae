package generator

import "fmt"

// Piano right-hand fingering cycles keyed by scale type. Indexed by the
// note's position within the governing scale; advisory metadata only,
// never validated.
var pianoScaleFingerings = map[string][]string{
	"major":          {"1", "2", "3", "1", "2", "3", "4", "5"},
	"natural_minor":  {"1", "2", "3", "1", "2", "3", "4", "5"},
	"harmonic_minor": {"1", "2", "3", "1", "2", "3", "4", "5"},
	"melodic_minor":  {"1", "2", "3", "1", "2", "3", "4", "5"},
	"chromatic":      {"1", "3", "1", "3", "1", "2", "1", "3", "1", "3", "1", "2"},
}

// Piano fingering per chord-tone position, keyed by chord quality.
var pianoChordFingerings = map[string][]string{
	"major":      {"1", "3", "5"},
	"minor":      {"1", "3", "5"},
	"diminished": {"1", "3", "5"},
	"augmented":  {"1", "3", "5"},
	"dominant7":  {"1", "2", "3", "5"},
}

// scaleFingering looks up the advisory fingering for the i-th note of a
// scale exercise. Piano uses the 1-5 right-hand cycles; anything else
// falls back to a simplified position heuristic.
func scaleFingering(instrument, scaleType string, i int) string {
	if instrument == "" || instrument == "piano" {
		cycle, ok := pianoScaleFingerings[scaleType]
		if !ok {
			cycle = pianoScaleFingerings["major"]
		}
		return cycle[i%len(cycle)]
	}
	return positionFingering(i)
}

// chordFingering is the chord-tone analogue of scaleFingering.
func chordFingering(instrument, chordType string, i int) string {
	if instrument == "" || instrument == "piano" {
		cycle, ok := pianoChordFingerings[chordType]
		if !ok {
			cycle = pianoChordFingerings["major"]
		}
		return cycle[i%len(cycle)]
	}
	return positionFingering(i)
}

// positionFingering is the simplified fret/position heuristic used for
// non-keyboard instruments: four fingers cycling with the note
// position.
func positionFingering(i int) string {
	return fmt.Sprintf("%d", i%4+1)
}
