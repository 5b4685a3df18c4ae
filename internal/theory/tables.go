package theory

import (
	"fmt"
	"strings"
)

// Scale interval tables in semitones from the root. Letter output is
// derived by walking the diatonic letters, so spellings stay scale-wise
// (g major yields f#, not gb).
var scaleIntervals = map[string][]int{
	"major":          {0, 2, 4, 5, 7, 9, 11},
	"natural_minor":  {0, 2, 3, 5, 7, 8, 10},
	"harmonic_minor": {0, 2, 3, 5, 7, 8, 11},
	"melodic_minor":  {0, 2, 3, 5, 7, 9, 11},
	"major_pentatonic": {0, 2, 4, 7, 9},
	"minor_pentatonic": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// Chord interval tables by quality (semitones from root).
var chordIntervals = map[string][]int{
	"major":      {0, 4, 7},
	"minor":      {0, 3, 7},
	"diminished": {0, 3, 6},
	"augmented":  {0, 4, 8},
	"dominant7":  {0, 4, 7, 10},
}

// letterOrder is the diatonic letter cycle starting at c.
var letterOrder = [7]string{"c", "d", "e", "f", "g", "a", "b"}

// KeySignature holds the alteration sets implied by a key.
type KeySignature struct {
	Sharps []string // letters carrying a sharp
	Flats  []string // letters carrying a flat
}

// The 15 standard key signatures keyed by lowercase major-key name.
// Minor keys are mapped to their relative major in KeyAlterations.
var keySignatures = map[string]KeySignature{
	"c":  {},
	"g":  {Sharps: []string{"f"}},
	"d":  {Sharps: []string{"f", "c"}},
	"a":  {Sharps: []string{"f", "c", "g"}},
	"e":  {Sharps: []string{"f", "c", "g", "d"}},
	"b":  {Sharps: []string{"f", "c", "g", "d", "a"}},
	"f#": {Sharps: []string{"f", "c", "g", "d", "a", "e"}},
	"c#": {Sharps: []string{"f", "c", "g", "d", "a", "e", "b"}},
	"f":  {Flats: []string{"b"}},
	"bb": {Flats: []string{"b", "e"}},
	"eb": {Flats: []string{"b", "e", "a"}},
	"ab": {Flats: []string{"b", "e", "a", "d"}},
	"db": {Flats: []string{"b", "e", "a", "d", "g"}},
	"gb": {Flats: []string{"b", "e", "a", "d", "g", "c"}},
	"cb": {Flats: []string{"b", "e", "a", "d", "g", "c", "f"}},
}

// relativeMajor maps minor key names to the major key sharing their
// signature (a minor -> c major, etc).
var relativeMajor = map[string]string{
	"a": "c", "e": "g", "b": "d", "f#": "a", "c#": "e", "g#": "b",
	"d#": "f#", "a#": "c#", "d": "f", "g": "bb", "c": "eb", "f": "ab",
	"bb": "db", "eb": "gb", "ab": "cb",
}

// ScaleIntervals returns the semitone offsets of a scale type, or an
// error for an unknown type.
func ScaleIntervals(scaleType string) ([]int, error) {
	intervals, ok := scaleIntervals[strings.ToLower(scaleType)]
	if !ok {
		return nil, fmt.Errorf("unknown scale type: %s", scaleType)
	}
	out := make([]int, len(intervals))
	copy(out, intervals)
	return out, nil
}

// ChordIntervals returns the semitone offsets of a chord quality, or an
// error for an unknown quality.
func ChordIntervals(chordType string) ([]int, error) {
	intervals, ok := chordIntervals[strings.ToLower(chordType)]
	if !ok {
		return nil, fmt.Errorf("unknown chord type: %s", chordType)
	}
	out := make([]int, len(intervals))
	copy(out, intervals)
	return out, nil
}

// KeyTonic extracts the lowercase tonic name and minor flag from a key
// token like "Bb", "e minor" or "f#m".
func KeyTonic(key string) (string, bool, error) {
	return parseKeyName(key)
}

// ScaleNotes derives the ordered note letters (with accidentals, no
// octave) of a scale from its root, e.g. ("g", "major") ->
// [g a b c d e f#]. The count is scale-type-defined: 7 for diatonic
// scales, 5 for pentatonics, and so on.
func ScaleNotes(root, scaleType string) ([]string, error) {
	intervals, ok := scaleIntervals[strings.ToLower(scaleType)]
	if !ok {
		return nil, fmt.Errorf("unknown scale type: %s", scaleType)
	}
	return spellFromRoot(root, intervals, 1)
}

// ChordNotes derives the ordered chord-tone letters for a root and
// quality, e.g. ("c", "minor") -> [c eb g]. Chord tones step in
// thirds, so the minor third of c spells eb, not d#.
func ChordNotes(root, chordType string) ([]string, error) {
	intervals, ok := chordIntervals[strings.ToLower(chordType)]
	if !ok {
		return nil, fmt.Errorf("unknown chord type: %s", chordType)
	}
	return spellFromRoot(root, intervals, 2)
}

// KeyAlterations returns the sharps/flats letter sets for one of the 15
// standard key signatures. The key may be spelled as a major key ("g",
// "Bb major") or a minor key ("e minor"); unknown tokens fail with a
// FormatError.
func KeyAlterations(key string) (KeySignature, error) {
	name, minor, err := parseKeyName(key)
	if err != nil {
		return KeySignature{}, err
	}

	if minor {
		maj, ok := relativeMajor[name]
		if !ok {
			return KeySignature{}, &FormatError{Input: key, Reason: "unknown minor key"}
		}
		name = maj
	}

	sig, ok := keySignatures[name]
	if !ok {
		return KeySignature{}, &FormatError{Input: key, Reason: "unknown key signature"}
	}
	return sig, nil
}

// ApplyKeySignature applies a key's alteration to a pitch string: a
// natural letter in the signature's sharp (flat) set gains a # (b). A
// pitch that already carries an explicit accidental is left untouched.
func ApplyKeySignature(pitch, key string) (string, error) {
	p, err := ParsePitch(pitch)
	if err != nil {
		return "", err
	}
	if p.Accidental != "" {
		return pitch, nil
	}

	sig, err := KeyAlterations(key)
	if err != nil {
		return "", err
	}

	for _, l := range sig.Sharps {
		if l == p.Letter {
			p.Accidental = "#"
			return p.String(), nil
		}
	}
	for _, l := range sig.Flats {
		if l == p.Letter {
			p.Accidental = "b"
			return p.String(), nil
		}
	}
	return pitch, nil
}

// spellFromRoot spells interval offsets from a root note. Diatonic
// rows (7-tone scales with letterStep 1, chord tones with letterStep 2)
// walk the letter cycle; everything else falls back to sharp spellings.
func spellFromRoot(root string, intervals []int, letterStep int) ([]string, error) {
	root = strings.ToLower(strings.TrimSpace(root))
	if len(root) == 0 || len(root) > 2 || root[0] < 'a' || root[0] > 'g' {
		return nil, &FormatError{Input: root, Reason: "root must be a-g with optional accidental"}
	}
	letter := root[:1]
	rootSemitone := noteOffsets[letter]
	if len(root) == 2 {
		switch root[1:] {
		case "#":
			rootSemitone++
		case "b":
			rootSemitone--
		default:
			return nil, &FormatError{Input: root, Reason: "accidental must be # or b"}
		}
	}

	rootIdx := 0
	for i, l := range letterOrder {
		if l == letter {
			rootIdx = i
		}
	}

	diatonic := letterStep == 2 || len(intervals) == 7

	notes := make([]string, 0, len(intervals))
	for i, iv := range intervals {
		target := (rootSemitone + iv) % 12
		if target < 0 {
			target += 12
		}

		if diatonic {
			// Each degree gets the letter letterStep positions on,
			// with the accidental chosen to hit the target semitone.
			l := letterOrder[(rootIdx+i*letterStep)%7]
			natural := noteOffsets[l]
			diff := target - natural
			// Wrap to the nearest representation (-1, 0, +1).
			if diff > 6 {
				diff -= 12
			} else if diff < -6 {
				diff += 12
			}
			switch diff {
			case 0:
				notes = append(notes, l)
			case 1:
				notes = append(notes, l+"#")
			case -1:
				notes = append(notes, l+"b")
			default:
				// Double accidentals fall back to the sharp spelling.
				notes = append(notes, sharpNames[target])
			}
		} else {
			notes = append(notes, sharpNames[target])
		}
	}
	return notes, nil
}

// parseKeyName splits a key token like "Bb", "e minor", "G major" into
// its lowercase tonic name and a minor flag.
func parseKeyName(key string) (string, bool, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(key)))
	if len(fields) == 0 || len(fields) > 2 {
		return "", false, &FormatError{Input: key, Reason: "expected <tonic> [major|minor|m]"}
	}

	name := fields[0]
	minor := false
	if len(fields) == 2 {
		switch fields[1] {
		case "major", "maj":
		case "minor", "min", "m":
			minor = true
		default:
			return "", false, &FormatError{Input: key, Reason: "mode must be major or minor"}
		}
	} else if strings.HasSuffix(name, "m") && len(name) > 1 {
		// Compact spelling like "am", "f#m".
		name = strings.TrimSuffix(name, "m")
		minor = true
	}

	if len(name) < 1 || len(name) > 2 || name[0] < 'a' || name[0] > 'g' {
		return "", false, &FormatError{Input: key, Reason: "tonic must be a-g with optional accidental"}
	}
	return name, minor, nil
}
