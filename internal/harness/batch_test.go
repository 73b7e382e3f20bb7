package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	content := `[{"num":5,"alive":[0,1,2,3,4],"starters":[1,3]},{"num":3,"alive":[0,2],"starters":[0]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := LoadBatch(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Num)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, entries[0].Alive)
	assert.Equal(t, []int{1, 3}, entries[0].Starters)
	assert.Equal(t, 3, entries[1].Num)
}

func TestRunBatchProducesOneRowPerEntry(t *testing.T) {
	entries := []BatchEntry{
		{Num: 5, Alive: []int{0, 1, 2, 3, 4}, Starters: []int{1, 3}},
		{Num: 3, Alive: []int{0, 2}, Starters: []int{0}},
	}

	rows, err := RunBatch(context.Background(), entries, RunOptions{BasePort: 27000}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, 1, rows[1].Index)
	assert.Greater(t, rows[0].StandardMsgs, uint64(0))
	assert.Greater(t, rows[0].ImprovedMsgs, uint64(0))
}
