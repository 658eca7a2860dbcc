// Package safety provides the pre-scoring content filter.
//
// Disallowed-content rules are CEL (Common Expression Language)
// expressions evaluated against the normalized utterance and context hint:
//
//	filter, err := safety.NewFilter([]string{
//	    `text.contains("weapon")`,
//	    `region == "embargoed" && text.contains("export")`,
//	}, logger)
//
//	blocked, rule := filter.Check("buy a weapon", hint)
//
// A blocked utterance terminates the pipeline with the safety_blocked
// action regardless of any downstream signal.
package safety
