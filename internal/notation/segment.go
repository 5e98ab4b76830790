package notation

// segmentMeasures partitions a contiguous token stream into measures of
// nominally barLen units. A boundary is emitted after the first token whose
// cumulative duration reaches or passes the next multiple of barLen; tokens
// are never split, so a measure holding a long straddling token may sum to
// more than barLen. The multiple target then skips past the counter.
func segmentMeasures(stream []Token, barLen int) []Measure {
	var measures []Measure
	var current Measure

	counter := 0
	next := barLen

	for _, tok := range stream {
		current.Tokens = append(current.Tokens, tok)
		current.Units += int(tok.Duration)
		counter += int(tok.Duration)

		if counter >= next {
			measures = append(measures, current)
			current = Measure{}
			for next <= counter {
				next += barLen
			}
		}
	}

	if len(current.Tokens) > 0 {
		measures = append(measures, current)
	}

	return measures
}
