package theory

import (
	"fmt"
	"strings"
)

// FormatError reports a malformed pitch string or key signature token.
// It is always a hard input defect, never recoverable by retrying.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid pitch format %q: %s", e.Input, e.Reason)
}

// Pitch is a parsed wire-format pitch string.
// Wire format: <letter><accidental?>/<octave>, e.g. "c/4", "f#/5", "bb/3".
type Pitch struct {
	Letter     string // a-g, lowercase
	Accidental string // "", "#" or "b"
	Octave     int    // 0-9
}

// Note semitone offsets from C within one octave
var noteOffsets = map[string]int{
	"c": 0, "d": 2, "e": 4, "f": 5, "g": 7, "a": 9, "b": 11,
}

// Canonical sharp spellings used when converting MIDI numbers back to
// pitch strings. Flat spellings round-trip to their sharp enharmonic.
var sharpNames = [12]string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// ParsePitch parses the wire pitch format (^[a-g][#b]?/[0-9]$).
func ParsePitch(s string) (Pitch, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Pitch{}, &FormatError{Input: s, Reason: "expected <note>/<octave>"}
	}

	head, octaveStr := parts[0], parts[1]
	if len(head) < 1 || len(head) > 2 {
		return Pitch{}, &FormatError{Input: s, Reason: "note part must be 1-2 characters"}
	}

	letter := head[:1]
	if letter < "a" || letter > "g" {
		return Pitch{}, &FormatError{Input: s, Reason: "note letter must be a-g (lowercase)"}
	}

	accidental := ""
	if len(head) == 2 {
		accidental = head[1:]
		if accidental != "#" && accidental != "b" {
			return Pitch{}, &FormatError{Input: s, Reason: "accidental must be # or b"}
		}
	}

	if len(octaveStr) != 1 || octaveStr[0] < '0' || octaveStr[0] > '9' {
		return Pitch{}, &FormatError{Input: s, Reason: "octave must be a single digit 0-9"}
	}

	return Pitch{
		Letter:     letter,
		Accidental: accidental,
		Octave:     int(octaveStr[0] - '0'),
	}, nil
}

// String renders the pitch back into wire format.
func (p Pitch) String() string {
	return fmt.Sprintf("%s%s/%d", p.Letter, p.Accidental, p.Octave)
}

// NoteToMIDI converts a wire pitch string to its MIDI note number.
// Convention: c/4 = 60 (middle C), so midi = (octave+1)*12 + semitone.
func NoteToMIDI(s string) (int, error) {
	p, err := ParsePitch(s)
	if err != nil {
		return 0, err
	}

	semitone := noteOffsets[p.Letter]
	switch p.Accidental {
	case "#":
		semitone++
	case "b":
		semitone--
	}

	return (p.Octave+1)*12 + semitone, nil
}

// MIDIToNote converts a MIDI note number back to a wire pitch string.
// Accidentals are spelled as sharps, so the conversion is self-inverse
// for any sharp-or-natural pitch string; flat inputs come back as their
// sharp enharmonic (bb/3 -> a#/3).
func MIDIToNote(n int) (string, error) {
	if n < 12 || n > 131 {
		return "", &FormatError{Input: fmt.Sprintf("%d", n), Reason: "MIDI number outside octave range 0-9"}
	}
	octave := n/12 - 1
	return fmt.Sprintf("%s/%d", sharpNames[n%12], octave), nil
}

// SpellNote renders an already-spelled note name (f#, eb) at a MIDI
// number, deriving the octave digit from the natural letter so that
// enharmonic spellings keep their written octave (eb/4 and d#/4 are
// both MIDI 63).
func SpellNote(name string, midi int) string {
	adj := 0
	if len(name) > 1 {
		if name[1] == '#' {
			adj = 1
		} else {
			adj = -1
		}
	}
	octave := (midi-noteOffsets[name[:1]]-adj)/12 - 1
	return fmt.Sprintf("%s/%d", name, octave)
}

// Transpose shifts a pitch by the given number of semitones, returning
// the canonical sharp spelling of the result.
func Transpose(s string, semitones int) (string, error) {
	n, err := NoteToMIDI(s)
	if err != nil {
		return "", err
	}
	return MIDIToNote(n + semitones)
}
