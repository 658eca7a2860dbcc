package router

import (
	"strings"

	"github.com/templeobijnr/easy-islanders-router/internal/feature"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
)

// followUpPhrases are continuation markers that carry too little signal for
// a fresh classification to be trustworthy.
var followUpPhrases = []string{
	"show me more",
	"more like",
	"the first one",
	"the second one",
	"the last one",
	"next one",
	"what about",
	"how about",
	"any others",
	"anything else",
}

// leadingPronouns mark an utterance that refers back to earlier results.
var leadingPronouns = map[string]bool{
	"it":    true,
	"that":  true,
	"this":  true,
	"those": true,
	"these": true,
	"they":  true,
}

// isFollowUp applies the lightweight follow-up heuristic to a normalized
// utterance. A sticky override additionally requires a non-expired sticky
// state; that check happens at the call site.
func (r *Router) isFollowUp(normalized string, hint intent.ContextHint) bool {
	// A location-only fragment ("esentepe?") continues the previous
	// search rather than starting a new one.
	if r.voter.LocationOnly(normalized) {
		return true
	}

	if feature.WordCount(normalized) <= 3 {
		return true
	}

	fields := strings.Fields(normalized)
	if len(fields) > 0 && leadingPronouns[fields[0]] {
		return true
	}

	for _, phrase := range followUpPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}

	return false
}
