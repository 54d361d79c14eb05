// Package engine applies a rule set to document pages and emits extraction
// records. Matching and value resolution are pure functions over the rule
// model; Engine adds ordering, provenance, and error policy.
package engine

import (
	"github.com/tenderworks/tendertag/internal/rules"
)

// RawMatch is one regex hit on a page. Groups holds positional capture
// groups with the first group at index 0; a group that did not participate
// in the match resolves to "".
type RawMatch struct {
	Full   string
	Groups []string
	Named  map[string]string
	Start  int
}

// Match applies the rule's compiled pattern to one page's text and returns
// every hit in left-to-right order.
func Match(rule *rules.Rule, pageText string) []RawMatch {
	re := rule.Regexp()
	locs := re.FindAllStringSubmatchIndex(pageText, -1)
	if len(locs) == 0 {
		return nil
	}
	names := re.SubexpNames()
	out := make([]RawMatch, 0, len(locs))
	for _, loc := range locs {
		m := RawMatch{
			Full:   pageText[loc[0]:loc[1]],
			Start:  loc[0],
			Groups: make([]string, 0, re.NumSubexp()),
		}
		for g := 1; g <= re.NumSubexp(); g++ {
			var val string
			if s, e := loc[2*g], loc[2*g+1]; s >= 0 {
				val = pageText[s:e]
			}
			m.Groups = append(m.Groups, val)
			if name := names[g]; name != "" {
				if m.Named == nil {
					m.Named = make(map[string]string)
				}
				m.Named[name] = val
			}
		}
		out = append(out, m)
	}
	return out
}
