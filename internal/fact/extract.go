package fact

// Extract applies rule to raw and returns the resulting Fact. Empty input,
// a missing field or a placeholder value all produce an absent Fact with
// ParseMiss. Unless the rule asks for the last or all candidates, the first
// candidate wins.
func Extract(name, raw string, rule Rule) Fact {
	var values []string
	for _, c := range rule.candidates(raw) {
		if v, ok := rule.clean(c); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Absent(name, ParseMiss)
	}

	switch rule.pick {
	case pickAll:
		return Of(name, values...)
	case pickLast:
		return Of(name, values[len(values)-1])
	default:
		return Of(name, values[0])
	}
}
