package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/entity"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	id := uuid.New()

	require.NoError(t, c.StartRun(ctx, id, "rules.yaml", "out.xlsx", 1, 2))
	status, _, err := c.RunStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), status)

	require.NoError(t, c.FinishSuccess(ctx, id, 42))
	status, records, err := c.RunStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusOK), status)
	assert.Equal(t, 42, records)
}

func TestRunFailure(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	id := uuid.New()

	require.NoError(t, c.StartRun(ctx, id, "rules.yaml", "out.xlsx", 1, 0))
	require.NoError(t, c.FinishFailure(ctx, id, "TEMPLATE_ERROR: rule \"X\""))

	status, _, err := c.RunStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), status)
}

func TestRecordCoverage(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	id := uuid.New()

	require.NoError(t, c.StartRun(ctx, id, "rules.yaml", "out.xlsx", 1, 0))
	missing := []entity.Key{
		{Section: "Financial", Parameter: "PerformanceBankGuarantee"},
		{Section: "Technical", Parameter: "GridVoltage"},
	}
	require.NoError(t, c.RecordCoverage(ctx, id, missing))

	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM coverage WHERE run_id = ?`, id.String()).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilCatalogIsNoOp(t *testing.T) {
	ctx := context.Background()
	var c *Catalog

	assert.NoError(t, c.StartRun(ctx, uuid.New(), "r", "o", 0, 0))
	assert.NoError(t, c.FinishSuccess(ctx, uuid.New(), 0))
	assert.NoError(t, c.FinishFailure(ctx, uuid.New(), "x"))
	assert.NoError(t, c.RecordCoverage(ctx, uuid.New(), nil))
	assert.NoError(t, c.Close())
}
