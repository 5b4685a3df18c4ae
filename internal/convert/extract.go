package convert

import "github.com/etudehq/etude-api/internal/notation"

// ExtractVoice returns a new score containing only the staves/voices
// matching the given voice id. Staves left empty are dropped, and so
// are parts that no longer reference any surviving staff.
func ExtractVoice(score notation.Score, voiceID string) notation.Score {
	out := score
	out.Measures = nil
	out.Parts = nil

	surviving := map[string]bool{}
	for _, m := range score.Measures {
		nm := m
		nm.Staves = nil
		for _, s := range m.Staves {
			ns := s
			ns.Voices = nil
			for _, v := range s.Voices {
				if v.ID == voiceID {
					nv := v
					nv.Notes = append([]notation.Note(nil), v.Notes...)
					ns.Voices = append(ns.Voices, nv)
				}
			}
			if len(ns.Voices) > 0 {
				nm.Staves = append(nm.Staves, ns)
				surviving[ns.ID] = true
			}
		}
		out.Measures = append(out.Measures, nm)
	}

	for _, p := range score.Parts {
		np := p
		np.StaffIDs = nil
		for _, id := range p.StaffIDs {
			if surviving[id] {
				np.StaffIDs = append(np.StaffIDs, id)
			}
		}
		if len(np.StaffIDs) > 0 {
			out.Parts = append(out.Parts, np)
		}
	}
	return out
}
