package convert

import (
	"fmt"
	"math"
	"sort"

	"github.com/etudehq/etude-api/internal/notation"
)

// ScoreToFlat flattens a multi-voice score into the legacy single-
// stream document. The collapse is intentionally lossy: per measure it
// merges every voice's notes into one time-sorted list, groups
// simultaneous notes into chords, normalizes times to be measure-
// relative, and carries the most recent explicit signatures forward. A
// conversion that yields no measures at all returns a single default
// whole-rest measure so downstream renderers never see an empty score.
func ScoreToFlat(score notation.Score) (FlatDocument, []string) {
	var warnings []string

	doc := FlatDocument{
		Title:    score.Title,
		Composer: score.Composer,
	}

	var carriedTS *notation.TimeSignature
	carriedKey := ""

	for _, m := range score.Measures {
		fm := FlatMeasure{
			Number:        m.Number,
			Clef:          deriveClef(m.Staves),
			Dynamics:      m.Dynamics,
			RehearsalMark: m.RehearsalMark,
			BarLine:       m.BarLine,
			RepeatCount:   m.RepeatCount,
			Tempo:         m.Tempo,
		}

		// Carry the most recent explicit signatures forward when a
		// measure does not redeclare them.
		if m.TimeSignature != nil {
			carriedTS = copyTimeSignature(m.TimeSignature)
		}
		if m.KeySignature != "" {
			carriedKey = m.KeySignature
		}
		fm.TimeSignature = copyTimeSignature(carriedTS)
		fm.KeySignature = carriedKey

		notes := collectNotes(m)
		if len(notes) == 0 {
			// An empty measure becomes a single whole-measure rest.
			fm.Notes = []FlatNote{wholeRest()}
			doc.Measures = append(doc.Measures, fm)
			continue
		}

		sort.SliceStable(notes, func(i, j int) bool { return notes[i].Time < notes[j].Time })

		// Guard against voices encoding absolute score-wide time:
		// shift every note so the measure starts at 0.
		origin := notes[0].Time
		if origin != 0 {
			for i := range notes {
				notes[i].Time -= origin
			}
		}

		fm.Notes = groupChords(notes, m.Number, &warnings)
		doc.Measures = append(doc.Measures, fm)
	}

	if len(doc.Measures) == 0 {
		warnings = append(warnings, "conversion produced no measures; substituted default rest measure")
		doc.Measures = []FlatMeasure{defaultMeasure()}
	}
	return doc, warnings
}

// collectNotes gathers every note from every voice of every staff of a
// measure into one list.
func collectNotes(m notation.Measure) []notation.Note {
	var notes []notation.Note
	for _, s := range m.Staves {
		for _, v := range s.Voices {
			for _, n := range v.Notes {
				c := n
				c.Keys = append([]string(nil), n.Keys...)
				notes = append(notes, c)
			}
		}
	}
	return notes
}

// groupChords merges notes sharing a start time into single chord
// notes. The grouped pitch list is the union of the sources' pitches;
// the rest flag survives only when every grouped note was a rest. The
// first note's duration wins, which is a known simplification: a group
// with differing durations is flagged rather than silently collapsed.
func groupChords(notes []notation.Note, measure int, warnings *[]string) []FlatNote {
	var out []FlatNote
	i := 0
	for i < len(notes) {
		group := []notation.Note{notes[i]}
		j := i + 1
		for j < len(notes) && math.Abs(notes[j].Time-notes[i].Time) < notation.DurationTolerance {
			group = append(group, notes[j])
			j++
		}

		first := group[0]
		fn := FlatNote{
			Duration:     first.Duration,
			Dots:         first.Dots,
			Time:         first.Time,
			IsRest:       true,
			Accidental:   first.Accidental,
			Articulation: first.Articulation,
			Dynamic:      first.Dynamic,
			Fingering:    first.Fingering,
		}

		seen := map[string]bool{}
		mixedDurations := false
		for _, g := range group {
			if !g.IsRest {
				fn.IsRest = false
			}
			if g.Duration != first.Duration || g.Dots != first.Dots {
				mixedDurations = true
			}
			for _, k := range g.Keys {
				if !g.IsRest && !seen[k] {
					seen[k] = true
					fn.Keys = append(fn.Keys, k)
				}
			}
		}
		if fn.IsRest && len(fn.Keys) == 0 {
			fn.Keys = append([]string(nil), first.Keys...)
		}
		if mixedDurations {
			*warnings = append(*warnings,
				fmt.Sprintf("measure %d: simultaneous notes at %.3f have differing durations; kept the first", measure, first.Time))
		}

		out = append(out, fn)
		i = j
	}
	return out
}

// deriveClef reports grand staff only for the exact two-staff
// treble-then-bass layout; otherwise the first staff's clef wins.
func deriveClef(staves []notation.Staff) notation.Clef {
	if len(staves) == 2 &&
		staves[0].Clef == notation.ClefTreble &&
		staves[1].Clef == notation.ClefBass {
		return notation.ClefGrand
	}
	if len(staves) > 0 && staves[0].Clef != "" {
		return staves[0].Clef
	}
	return notation.ClefTreble
}

func wholeRest() FlatNote {
	return FlatNote{
		Keys:     []string{"b/4"},
		Duration: notation.Whole,
		Time:     0,
		IsRest:   true,
	}
}

// defaultMeasure is the minimal valid placeholder: one whole rest in
// 4/4 C major on a treble staff.
func defaultMeasure() FlatMeasure {
	return FlatMeasure{
		Number:        1,
		Clef:          notation.ClefTreble,
		TimeSignature: &notation.TimeSignature{Beats: 4, BeatUnit: 4},
		KeySignature:  "c",
		Notes:         []FlatNote{wholeRest()},
	}
}
