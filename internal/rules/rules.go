// Package rules holds the declarative extraction rule set: an ordered list
// of regex rules plus the headline-field map, loaded once per run and
// treated as immutable configuration afterwards.
package rules

import (
	"regexp"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/entity"
)

// Rule maps one text pattern to a named tender parameter.
type Rule struct {
	Section       string
	ClauseRef     string
	Parameter     string
	Pattern       string
	Flags         []constants.PatternFlag
	Mode          constants.MatchMode
	ValueTemplate string // "{0}"/"{name}" substitution; empty means whole match
	Unit          string
	Notes         string
	MultiValued   bool // cross-document append instead of override

	re *regexp.Regexp
}

// Regexp returns the pattern compiled at load time.
func (r *Rule) Regexp() *regexp.Regexp {
	return r.re
}

// Key returns the (section, parameter) reconciliation key for the rule.
func (r *Rule) Key() entity.Key {
	return entity.Key{Section: r.Section, Parameter: r.Parameter}
}

// BidInfoKey names one headline field and the record key it is read from.
type BidInfoKey struct {
	Field     string
	Section   string
	Parameter string
}

// Set is the full rule set for a run.
type Set struct {
	Rules    []Rule
	BidInfo  []BidInfoKey
	Defaults map[string]string // static fallback values for headline fields
}

// Uncovered returns the keys of rules that produced no record, in rule-set
// order, for the coverage report. Duplicate keys are reported once.
func (s *Set) Uncovered(records []entity.Record) []entity.Key {
	produced := make(map[entity.Key]struct{}, len(records))
	for _, r := range records {
		produced[r.Key()] = struct{}{}
	}
	seen := make(map[entity.Key]struct{}, len(s.Rules))
	var missing []entity.Key
	for i := range s.Rules {
		k := s.Rules[i].Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := produced[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
