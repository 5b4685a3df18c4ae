package generator

import "github.com/etudehq/etude-api/internal/notation"

// generateMixed splits the requested measure count roughly in half,
// fills the first half with the scale generator and the second with the
// arpeggio generator, and renumbers the second half to continue
// sequentially.
func generateMixed(p Params) ([]notation.Measure, error) {
	firstCount := (p.Measures + 1) / 2
	secondCount := p.Measures - firstCount

	scaleParams := p
	scaleParams.Measures = firstCount
	measures, err := generateScale(scaleParams)
	if err != nil {
		return nil, err
	}

	if secondCount == 0 {
		return measures, nil
	}

	arpParams := p
	arpParams.Measures = secondCount
	second, err := generateArpeggio(arpParams)
	if err != nil {
		return nil, err
	}

	for i := range second {
		second[i].Number = firstCount + i + 1
		if i == 0 {
			// Signatures were already stamped on measure one; the
			// arpeggio half restates nothing.
			second[i].TimeSignature = nil
			second[i].KeySignature = ""
			second[i].Tempo = 0
		}
	}
	return append(measures, second...), nil
}
