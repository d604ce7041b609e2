package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/banbrick/collector/internal/coerce"
	"github.com/banbrick/collector/internal/validation"
)

func TestLoadFixtures(t *testing.T) {
	content := `{
		"projects": [
			{"name": "p1", "group": "ops", "status": "enable"}
		],
		"items": [
			{"project": "p1", "name": "cpu", "type": "integer", "status": "enable", "value": "42"},
			{"project": "p1", "name": "ratio", "type": "decimal", "status": "enable", "value": "not-a-number"},
			{"project": "ghost", "name": "orphan", "type": "text", "status": "enable"}
		]
	}`
	fname := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(fname, []byte(content), 0644))

	logger := zap.NewNop().Sugar()
	storage := NewMemStorage(validation.NewRules(validation.SafetyString()))
	ctx := context.Background()

	projects, err := LoadFixtures(ctx, storage, fname, coerce.NewFixer(logger), logger)
	require.NoError(t, err)
	require.Contains(t, projects, "p1")

	items, err := storage.ListItems(ctx, projects["p1"])
	require.NoError(t, err)
	assert.Len(t, items, 2)

	cpu, err := storage.GetEnabledItem(ctx, projects["p1"], "cpu")
	require.NoError(t, err)
	assert.Equal(t, "42", *cpu.Value)

	// lenient path nulled the unconvertible decimal instead of failing
	ratio, err := storage.GetEnabledItem(ctx, projects["p1"], "ratio")
	require.NoError(t, err)
	assert.Nil(t, ratio.Value)
}

func TestLoadFixtures_MissingFileIsNoop(t *testing.T) {
	logger := zap.NewNop().Sugar()
	storage := NewMemStorage(validation.NewRules(validation.SafetyString()))

	projects, err := LoadFixtures(context.Background(), storage,
		filepath.Join(t.TempDir(), "missing.json"), coerce.NewFixer(logger), logger)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
