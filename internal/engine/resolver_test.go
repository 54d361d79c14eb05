package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderworks/tendertag/internal/common"
)

func TestResolve_PositionalTemplate(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: 'Capacity:\s*(\d+)\s*MW'
    value_expr: "{0} MW"
`)
	matches := Match(rule, "Capacity: 250 MW")
	require.Len(t, matches, 1)

	got, err := Resolve(rule, matches[0])
	require.NoError(t, err)
	assert.Equal(t, "250 MW", got)
}

func TestResolve_NamedTemplate(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Financial
    parameter: EMD
    pattern: 'EMD of (?P<amt>[\d,]+) (?P<unit>lakh|crore)'
    value_expr: "{amt} {unit}"
`)
	matches := Match(rule, "EMD of 10,00,000 lakh payable")
	require.Len(t, matches, 1)

	got, err := Resolve(rule, matches[0])
	require.NoError(t, err)
	assert.Equal(t, "10,00,000 lakh", got)
}

func TestResolve_UnknownReferenceFails(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"unknown name", "{cap}"},
		{"index out of range", "{3}"},
		{"unterminated reference", "{0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: 'Capacity:\s*(\d+)\s*MW'
    value_expr: "`+tt.expr+`"
`)
			matches := Match(rule, "Capacity: 250 MW")
			require.Len(t, matches, 1)

			_, err := Resolve(rule, matches[0])
			require.Error(t, err)
			assert.Equal(t, common.CodeTemplate, common.CodeOf(err))
			assert.Contains(t, err.Error(), "CapacityMW", "error names the rule")
		})
	}
}

func TestResolve_WholeMatchDefault(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: '\d+\s*MW'
`)
	matches := Match(rule, "Capacity: 250 MW")
	require.Len(t, matches, 1)

	got, err := Resolve(rule, matches[0])
	require.NoError(t, err)
	assert.Equal(t, "250 MW", got)
}

func TestResolve_WhitespaceNormalization(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: 'Capacity:\s*(\d+[\s\S]*?MW)'
    value_expr: "{0}"
`)
	matches := Match(rule, "Capacity: 250\n \t MW")
	require.Len(t, matches, 1)

	got, err := Resolve(rule, matches[0])
	require.NoError(t, err)
	assert.Equal(t, "250 MW", got, "line-wrap whitespace collapses to one space")
}

func TestResolve_BraceEscapes(t *testing.T) {
	rule := mustRule(t, `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: '(\d+)\s*MW'
    value_expr: "{{{0}}}"
`)
	matches := Match(rule, "250 MW")
	require.Len(t, matches, 1)

	got, err := Resolve(rule, matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{250}", got)
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "250 MW", NormalizeSpace("  250\n  MW\t"))
	assert.Equal(t, "", NormalizeSpace(" \n\t "))
}
