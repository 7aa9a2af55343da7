package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	boom := errors.New("boom")

	r.Operation(OpCreate, nil)
	r.Operation(OpCreate, nil)
	r.Operation(OpCreate, boom)
	r.Operation(OpDelete, nil)
	r.BlobDelete(nil)
	r.BlobDelete(boom)
	r.InvalidEntries(3)
	r.InvalidEntries(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues(OpCreate, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues(OpCreate, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues(OpDelete, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.blobDeletes.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.invalid))
}

func TestRecorderRunFinished(t *testing.T) {
	r := New()
	start := time.Unix(1_700_000_000, 0)
	r.RunFinished(start, start.Add(1500*time.Millisecond))

	assert.Equal(t, 1.5, testutil.ToFloat64(r.lastDuration))
	assert.Equal(t, float64(1_700_000_001), testutil.ToFloat64(r.lastSuccess))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Operation(OpCreate, nil)
	r.BlobDelete(nil)
	r.InvalidEntries(1)
	r.RunFinished(time.Now(), time.Now())
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Operation(OpDelete, nil)

	path := filepath.Join(t.TempDir(), "shelfsync.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `shelfsync_sync_operations_total{op="delete",status="ok"} 1`))
}
