package constants

import "strings"

// MatchMode controls how many matches a rule collects within one document.
type MatchMode string

const (
	ModeFirst MatchMode = "first" // stop at the first match, in page order
	ModeAll   MatchMode = "all"   // collect every match on every page
)

// NormalizeMode lowercases a mode string and applies the default.
func NormalizeMode(s string) MatchMode {
	m := MatchMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeFirst
	}
	return m
}

// PatternFlag is a regex matching-mode toggle on a rule.
type PatternFlag string

const (
	FlagIgnoreCase PatternFlag = "IGNORECASE"
	FlagDotAll     PatternFlag = "DOTALL"
	FlagMultiline  PatternFlag = "MULTILINE"
)

// flagAliases maps alternate spellings accepted in rule files to the
// canonical flag names.
var flagAliases = map[string]PatternFlag{
	"IGNORECASE":          FlagIgnoreCase,
	"CASE_INSENSITIVE":    FlagIgnoreCase,
	"DOTALL":              FlagDotAll,
	"DOT_MATCHES_NEWLINE": FlagDotAll,
	"MULTILINE":           FlagMultiline,
}

// NormalizeFlag resolves a flag spelling to its canonical form.
// Returns "" when the spelling is unknown.
func NormalizeFlag(s string) PatternFlag {
	return flagAliases[strings.ToUpper(strings.TrimSpace(s))]
}
