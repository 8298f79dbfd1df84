package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTryLoadFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop_schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte("shop_code,allowed_weekday\nA,Monday\n"), 0o644))

	ds, err := TryLoadFirst([]string{filepath.Join(dir, "missing.csv"), path}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, 1, ds.Len())
}

func TestTryLoadFirstNoCandidates(t *testing.T) {
	ds, err := TryLoadFirst([]string{filepath.Join(t.TempDir(), "absent.xlsx")}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, ds, "missing defaults are not an error; overrides may be uploaded")
}
