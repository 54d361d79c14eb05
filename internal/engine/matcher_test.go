package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderworks/tendertag/internal/rules"
)

func mustRule(t *testing.T, yaml string) *rules.Rule {
	t.Helper()
	set, err := rules.Parse([]byte(yaml), nil)
	require.NoError(t, err)
	require.Len(t, set.Rules, 1)
	return &set.Rules[0]
}

func TestMatch_AllHitsLeftToRight(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: Capacity
    pattern: '(\d+)\s*MW'
`)
	matches := Match(rule, "Unit 1: 250 MW, Unit 2: 300 MW")
	require.Len(t, matches, 2)
	assert.Equal(t, "250", matches[0].Groups[0])
	assert.Equal(t, "300", matches[1].Groups[0])
	assert.Less(t, matches[0].Start, matches[1].Start)
}

func TestMatch_NamedGroups(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: Capacity
    pattern: '(?P<cap>\d+)\s*(?P<unit>MW|MVA)'
`)
	matches := Match(rule, "rated at 250 MW continuous")
	require.Len(t, matches, 1)
	assert.Equal(t, "250", matches[0].Named["cap"])
	assert.Equal(t, "MW", matches[0].Named["unit"])
	assert.Equal(t, "250 MW", matches[0].Full)
}

func TestMatch_NonParticipatingGroupIsEmpty(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: Deadline
    pattern: '(?:before (\w+))|(?:after (\w+))'
`)
	matches := Match(rule, "submitted after March")
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Groups, 2)
	assert.Equal(t, "", matches[0].Groups[0], "unused alternation branch resolves empty")
	assert.Equal(t, "March", matches[0].Groups[1])
}

func TestMatch_NoHit(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: Capacity
    pattern: '(\d+)\s*MW'
`)
	assert.Nil(t, Match(rule, "no megawatts here"))
}
