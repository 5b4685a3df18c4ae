package generator

import (
	"fmt"
	"math"
	"strings"

	"github.com/etudehq/etude-api/internal/notation"
)

// titleNouns names each technical type in exercise titles.
var titleNouns = map[string]string{
	TypeScale:        "Scale",
	TypeArpeggio:     "Arpeggio",
	TypeHanon:        "Technical Pattern",
	TypeMixed:        "Scale & Arpeggio Drill",
	TypeSightReading: "Sight-Reading Etude",
}

// focusAreas lists what each technical type trains.
var focusAreas = map[string][]string{
	TypeScale:        {"scales", "finger technique", "key familiarity"},
	TypeArpeggio:     {"arpeggios", "chord tones", "hand position shifts"},
	TypeHanon:        {"finger independence", "evenness", "endurance"},
	TypeMixed:        {"scales", "arpeggios", "transitions"},
	TypeSightReading: {"sight-reading", "rhythm reading", "interval recognition"},
}

// Describe derives the exercise's human-readable metadata from its
// parameters. Everything here is deterministic: the same parameters
// always yield the same title, tags and estimate.
func Describe(p Params) notation.ExerciseMetadata {
	noun := titleNouns[p.TechnicalType]
	if noun == "" {
		noun = "Exercise"
	}

	key := displayKey(p.KeySignature)
	title := fmt.Sprintf("%s %s", key, noun)
	if p.TechnicalType == TypeHanon || p.TechnicalType == TypeMixed || p.TechnicalType == TypeSightReading {
		title = fmt.Sprintf("%s in %s", noun, key)
	}
	if p.octaves() > 1 && (p.TechnicalType == TypeScale || p.TechnicalType == TypeArpeggio) {
		title = fmt.Sprintf("%s, %d Octaves", title, p.octaves())
	}

	desc := fmt.Sprintf("%s exercise in %s, %d/%d time, %d measures at %d BPM (difficulty %d/10).",
		noun, key, p.TimeSignature.Beats, p.TimeSignature.BeatUnit,
		p.Measures, p.Tempo, p.Difficulty)
	if p.IncludeDescending {
		desc += " Includes the descending pass."
	}

	tags := []string{
		p.TechnicalType,
		strings.ToLower(key),
		fmt.Sprintf("difficulty-%d", p.Difficulty),
		string(p.Clef),
	}

	return notation.ExerciseMetadata{
		Title:       title,
		Description: desc,
		FocusAreas:  focusAreas[p.TechnicalType],
		Tags:        tags,
		DurationS:   EstimatedSeconds(p),
	}
}

// EstimatedSeconds is measures x beats-per-measure x 60/tempo, rounded
// up.
func EstimatedSeconds(p Params) int {
	if p.Tempo <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.Measures) * float64(p.TimeSignature.Beats) * 60 / float64(p.Tempo)))
}

// displayKey renders a key token like "bb minor" as "Bb Minor".
func displayKey(key string) string {
	fields := strings.Fields(strings.TrimSpace(key))
	for i, f := range fields {
		if f == "" {
			continue
		}
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	if len(fields) == 1 {
		return fields[0] + " Major"
	}
	return strings.Join(fields, " ")
}
