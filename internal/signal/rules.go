package signal

import (
	"strings"
	"unicode"
)

// locationAliases collapses location synonyms to one canonical token before
// matching, so "kyrenia" and "girne" land in the same vote bucket.
var locationAliases = map[string]string{
	"kyrenia":    "girne",
	"girne":      "girne",
	"nicosia":    "lefkosa",
	"lefkosa":    "lefkosa",
	"lefkoşa":    "lefkosa",
	"famagusta":  "magusa",
	"magusa":     "magusa",
	"gazimağusa": "magusa",
	"morphou":    "guzelyurt",
	"guzelyurt":  "guzelyurt",
	"güzelyurt":  "guzelyurt",
	"trikomo":    "iskele",
	"iskele":     "iskele",
	"lapta":      "lapta",
	"lapithos":   "lapta",
	"alsancak":   "alsancak",
	"karavas":    "alsancak",
	"esentepe":   "esentepe",
	"catalkoy":   "catalkoy",
	"çatalköy":   "catalkoy",
}

// defaultTables maps each domain to the keyword phrases that vote for it.
// Canonical location tokens appear where a location strongly implies the
// domain. Phrases are matched on word boundaries after alias collapsing.
func defaultTables() map[string][]string {
	return map[string][]string{
		"real_estate": {
			"apartment", "flat", "studio", "villa", "house", "bedroom",
			"rent", "rental", "lease", "property", "properties",
			"for sale", "to let", "landlord", "tenant", "deposit",
			"furnished", "penthouse", "duplex", "girne", "lefkosa",
			"magusa", "iskele", "esentepe", "lapta", "alsancak", "catalkoy",
		},
		"marketplace": {
			"buy", "sell", "selling", "second hand", "used", "listing",
			"marketplace", "furniture", "sofa", "fridge", "washing machine",
			"car", "motorbike", "bicycle", "phone", "laptop", "bargain",
			"price", "cheap", "offer",
		},
		"local_info": {
			"restaurant", "cafe", "bar", "pharmacy", "hospital", "doctor",
			"beach", "weather", "bus", "taxi", "ferry", "flight",
			"open", "opening hours", "near me", "nearby", "events",
			"things to do", "market day", "exchange rate",
		},
		"general": {
			"hello", "hi", "hey", "help", "thanks", "thank you",
			"who are you", "what can you do",
		},
	}
}

// RuleVoter is the deterministic keyword/phrase matcher. It has no learned
// state and no external dependencies, so it is defined as never-failing.
type RuleVoter struct {
	domains []string
	tables  map[string][]string
}

// NewRuleVoter creates a voter over the configured domain set using the
// built-in keyword tables. Domains without a table simply receive no votes.
func NewRuleVoter(domains []string) *RuleVoter {
	return &RuleVoter{
		domains: domains,
		tables:  defaultTables(),
	}
}

// tokenize splits normalized text into letter/digit tokens, dropping
// punctuation, and collapses location aliases to canonical form.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for i, tok := range fields {
		if canon, ok := locationAliases[tok]; ok {
			fields[i] = canon
		}
	}
	return fields
}

// Vote returns the per-domain vote vector for normalized text, scaled so
// the top domain scores 1.0. Always available.
func (v *RuleVoter) Vote(text string) Scores {
	tokens := tokenize(text)
	padded := " " + strings.Join(tokens, " ") + " "

	votes := make(map[string]float64, len(v.domains))
	maxVotes := 0.0
	for _, d := range v.domains {
		count := 0.0
		for _, phrase := range v.tables[d] {
			if strings.Contains(padded, " "+phrase+" ") {
				count++
			}
		}
		votes[d] = count
		if count > maxVotes {
			maxVotes = count
		}
	}

	// Scale to [0,1] so fusion sees comparable ranges across providers.
	if maxVotes > 0 {
		for d := range votes {
			votes[d] /= maxVotes
		}
	}

	return Scores{
		Name:      NameRule,
		Available: true,
		ByDomain:  votes,
	}
}

// LocationOnly reports whether the text consists solely of known location
// tokens, e.g. a bare "esentepe" follow-up fragment.
func (v *RuleVoter) LocationOnly(text string) bool {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := locationAliases[tok]; !ok {
			return false
		}
	}
	return true
}
