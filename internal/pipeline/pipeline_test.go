package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/catalog"
	"github.com/tenderworks/tendertag/internal/textsource"
)

const pipelineRules = `
extractors:
  - section: Technical
    parameter: CapacityMW
    pattern: 'Capacity:\s*(\d+)\s*MW'
    value_expr: "{0} MW"
  - section: Schedule
    parameter: Milestone
    pattern: 'Milestone\s+(\w+)'
    mode: all
    multi_valued: true
  - section: Financial
    parameter: PerformanceBankGuarantee
    pattern: 'PBG of ([\d.]+)%'
bid_info_map:
  - field: Capacity
    section: Technical
    parameter: CapacityMW
  - field: PBG
    section: Financial
    parameter: PerformanceBankGuarantee
`

func writeRules(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineRules), 0o600))
	return path
}

func testSource() *textsource.Memory {
	return &textsource.Memory{Docs: map[string][]textsource.Page{
		"rfs.pdf": {
			{Number: 1, Text: "Capacity: 250 MW. Milestone A due first."},
			{Number: 2, Text: "Milestone B follows."},
		},
		"corr1.pdf": {
			{Number: 1, Text: "Revised Capacity: 275 MW. Milestone C added. CORRIGENDUM dated 15/08/2025"},
		},
		"corr2.pdf": {
			{Number: 1, Text: "Capacity: 300 MW stands final."},
		},
	}}
}

func runRequest(t *testing.T, parallel bool) (Summary, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "tagging.xlsx")
	p := New(testSource(), nil, nil, Options{Parallel: parallel})
	summary, err := p.Run(context.Background(), Request{
		RulesPath:  writeRules(t),
		OutputPath: out,
		Primaries:  []string{"rfs.pdf"},
		Amendments: []string{"corr1.pdf", "corr2.pdf"},
	})
	require.NoError(t, err)
	return summary, out
}

func TestRun_EndToEnd(t *testing.T) {
	summary, out := runRequest(t, false)

	// CapacityMW overridden twice, Milestone accumulated A,B,C.
	assert.Equal(t, 4, summary.Records)
	require.Len(t, summary.Coverage, 1, "PBG never matched")
	assert.Equal(t, "PerformanceBankGuarantee", summary.Coverage[0].Parameter)
	require.Len(t, summary.BidInfo, 1, "missing headline key emits no placeholder")
	assert.Equal(t, "300 MW", summary.BidInfo[0].Value, "latest amendment wins")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(constants.SheetMaster)
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus four records")
	assert.Equal(t, []string{"Technical", "", "CapacityMW", "300 MW", "", "", "1", "corr2.pdf"}, rows[1][:8])
	assert.Equal(t, "Milestone A", rows[2][3])
	assert.Equal(t, "Milestone C", rows[4][3])
	assert.Equal(t, "corr1.pdf", rows[4][7])

	amendRows, err := f.GetRows(constants.SheetAmendments)
	require.NoError(t, err)
	require.Len(t, amendRows, 3)
	assert.Equal(t, "CORRIGENDUM", amendRows[1][0])
	assert.Equal(t, "15/08/2025", amendRows[1][2])
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	seq, _ := runRequest(t, false)
	par, _ := runRequest(t, true)

	assert.Equal(t, seq.Records, par.Records)
	assert.Equal(t, seq.Coverage, par.Coverage)
	assert.Equal(t, seq.BidInfo, par.BidInfo, "join order is declared order, not completion order")
}

func TestRun_CoverageOnlySkipsWorkbook(t *testing.T) {
	p := New(testSource(), nil, nil, Options{})
	summary, err := p.Run(context.Background(), Request{
		RulesPath: writeRules(t),
		Primaries: []string{"rfs.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Records)
	assert.Len(t, summary.Coverage, 1)
}

func TestRun_NoPrimaryFails(t *testing.T) {
	p := New(testSource(), nil, nil, Options{})
	_, err := p.Run(context.Background(), Request{
		RulesPath:  writeRules(t),
		Amendments: []string{"corr1.pdf"},
	})
	require.Error(t, err)
}

func TestRun_RecordsCatalogRow(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	defer func() { _ = cat.Close() }()

	out := filepath.Join(t.TempDir(), "tagging.xlsx")
	p := New(testSource(), cat, nil, Options{})
	summary, err := p.Run(ctx, Request{
		RulesPath:  writeRules(t),
		OutputPath: out,
		Primaries:  []string{"rfs.pdf"},
		Amendments: []string{"corr1.pdf", "corr2.pdf"},
	})
	require.NoError(t, err)

	status, records, err := cat.RunStatus(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusOK), status)
	assert.Equal(t, summary.Records, records)
}
