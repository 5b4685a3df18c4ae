package convert

import (
	"fmt"
	"time"

	"github.com/etudehq/etude-api/internal/notation"
)

// MergeScores unions multiple scores measure-by-measure: staves are
// concatenated per measure (shorter scores padded to the longest),
// the first non-empty time/key signature and tempo win per measure,
// and parts are concatenated with regenerated unique ids so two scores
// both carrying "part1" do not collide.
func MergeScores(scores []notation.Score) notation.Score {
	now := time.Now().UTC()
	merged := notation.Score{
		Title: "Merged Score",
		Metadata: notation.ScoreMetadata{
			CreatedAt:  now,
			ModifiedAt: now,
			Source:     "merged",
		},
	}
	if len(scores) == 0 {
		return merged
	}
	if scores[0].Title != "" {
		merged.Title = scores[0].Title
	}

	longest := 0
	for _, s := range scores {
		if len(s.Measures) > longest {
			longest = len(s.Measures)
		}
	}

	for i := 0; i < longest; i++ {
		m := notation.Measure{Number: i + 1}
		for si, s := range scores {
			if i >= len(s.Measures) {
				// Pad the shorter score with empty staves so part
				// staff references still resolve in every measure.
				for _, staff := range staffLayout(s) {
					m.Staves = append(m.Staves, notation.Staff{
						ID:   mergedID(si, staff.ID),
						Clef: staff.Clef,
						Voices: []notation.Voice{{
							ID: voiceMain,
						}},
					})
				}
				continue
			}
			src := s.Measures[i]

			for _, staff := range src.Staves {
				ns := staff
				ns.ID = mergedID(si, staff.ID)
				m.Staves = append(m.Staves, ns)
			}

			// First non-empty wins for signatures and tempo.
			if m.TimeSignature == nil && src.TimeSignature != nil {
				m.TimeSignature = copyTimeSignature(src.TimeSignature)
			}
			if m.KeySignature == "" {
				m.KeySignature = src.KeySignature
			}
			if m.Tempo == 0 {
				m.Tempo = src.Tempo
			}
			if m.BarLine == "" {
				m.BarLine = src.BarLine
			}
		}
		merged.Measures = append(merged.Measures, m)
	}

	for si, s := range scores {
		for _, p := range s.Parts {
			np := p
			np.ID = mergedID(si, p.ID)
			np.StaffIDs = nil
			for _, id := range p.StaffIDs {
				np.StaffIDs = append(np.StaffIDs, mergedID(si, id))
			}
			merged.Parts = append(merged.Parts, np)
		}
	}
	return merged
}

// staffLayout reports a score's staff ids and clefs from its first
// measure, used when padding it past its own length.
func staffLayout(s notation.Score) []notation.Staff {
	if len(s.Measures) == 0 {
		return nil
	}
	return s.Measures[0].Staves
}

// mergedID namespaces an id by its source score's position.
func mergedID(scoreIdx int, id string) string {
	return fmt.Sprintf("s%d-%s", scoreIdx+1, id)
}
