package rules

import "strings"

// Set is an immutable, ordered, deduplicated collection of prefix rules.
// A new *Set is allocated every time the rules are re-merged, so callers can
// detect changes by comparing pointers.
type Set struct {
	rules []PrefixRule
}

// Merge combines contributions in order. Rules are keyed by Prefix: a later
// rule with the same prefix replaces the earlier one but keeps the position
// where that prefix was first seen.
func Merge(contributions ...[]PrefixRule) *Set {
	pos := make(map[string]int)
	var out []PrefixRule
	for _, list := range contributions {
		for _, r := range list {
			if i, ok := pos[r.Prefix]; ok {
				out[i] = r
				continue
			}
			pos[r.Prefix] = len(out)
			out = append(out, r)
		}
	}
	return &Set{rules: out}
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns a copy of the rules in order.
func (s *Set) Rules() []PrefixRule {
	if s == nil {
		return nil
	}
	out := make([]PrefixRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Lookup returns the rule registered for exactly prefix.
func (s *Set) Lookup(prefix string) (PrefixRule, bool) {
	if s == nil {
		return PrefixRule{}, false
	}
	for _, r := range s.rules {
		if r.Prefix == prefix {
			return r, true
		}
	}
	return PrefixRule{}, false
}

// Classify returns the first rule whose Prefix or Emoji starts alias.
// An empty Prefix or Emoji matches every alias, which makes such a rule a
// catch-all for everything after it.
func (s *Set) Classify(alias string) (PrefixRule, bool) {
	if s == nil {
		return PrefixRule{}, false
	}
	for _, r := range s.rules {
		if strings.HasPrefix(alias, r.Prefix) || strings.HasPrefix(alias, r.Emoji) {
			return r, true
		}
	}
	return PrefixRule{}, false
}

// ByPrefix returns the first rule whose Prefix starts alias. Emoji is not
// considered: this is the lookup used to decide what to replace.
func (s *Set) ByPrefix(alias string) (PrefixRule, bool) {
	if s == nil {
		return PrefixRule{}, false
	}
	for _, r := range s.rules {
		if strings.HasPrefix(alias, r.Prefix) {
			return r, true
		}
	}
	return PrefixRule{}, false
}
