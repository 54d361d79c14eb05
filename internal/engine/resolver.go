package engine

import (
	"fmt"
	"strings"

	"github.com/tenderworks/tendertag/internal/common"
	"github.com/tenderworks/tendertag/internal/rules"
)

// Resolve turns a raw match into the final value string using the rule's
// value template. An empty template means the whole matched substring.
// References are "{0}", "{1}", ... for positional groups (0-based) and
// "{name}" for named groups; "{{" and "}}" escape literal braces. An
// unresolved reference is a TEMPLATE_ERROR naming the rule, never silently
// replaced, since it indicates a rule/pattern mismatch.
func Resolve(rule *rules.Rule, m RawMatch) (string, error) {
	if rule.ValueTemplate == "" {
		return NormalizeSpace(m.Full), nil
	}

	t := rule.ValueTemplate
	var b strings.Builder
	for i := 0; i < len(t); {
		switch {
		case t[i] == '{' && i+1 < len(t) && t[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case t[i] == '}' && i+1 < len(t) && t[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case t[i] == '{':
			end := strings.IndexByte(t[i:], '}')
			if end < 0 {
				return "", templateError(rule, t[i:])
			}
			ref := t[i+1 : i+end]
			val, ok := lookupRef(m, ref)
			if !ok {
				return "", templateError(rule, ref)
			}
			b.WriteString(val)
			i += end + 1
		default:
			b.WriteByte(t[i])
			i++
		}
	}
	return NormalizeSpace(b.String()), nil
}

// NormalizeSpace trims a value and collapses internal whitespace runs to a
// single space, compensating for PDF line-wrap artifacts.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lookupRef(m RawMatch, ref string) (string, bool) {
	if idx, ok := parseIndex(ref); ok {
		if idx < 0 || idx >= len(m.Groups) {
			return "", false
		}
		return m.Groups[idx], true
	}
	val, ok := m.Named[ref]
	return val, ok
}

func parseIndex(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(ref); i++ {
		if ref[i] < '0' || ref[i] > '9' {
			return 0, false
		}
		n = n*10 + int(ref[i]-'0')
	}
	return n, true
}

func templateError(rule *rules.Rule, ref string) error {
	return common.NewAppError(common.CodeTemplate,
		fmt.Sprintf("rule %q: template %q references unresolvable %q",
			rule.Parameter, rule.ValueTemplate, ref),
		common.ErrValidation)
}
