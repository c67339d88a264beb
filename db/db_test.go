package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultmanager/config"
	"vaultmanager/db"
)

func newTestDB(t *testing.T) *db.Manager {
	t.Helper()
	mgr, err := db.NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mgr.Close())
	})
	return mgr
}

func TestWriteReadDelete(t *testing.T) {
	mgr := newTestDB(t)

	mgr.EnqueueSet("k1", "v1")
	mgr.EnqueueSet("k2", "v2")
	require.NoError(t, mgr.ForceFlush())

	val, err := mgr.Read("k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(val))

	mgr.EnqueueDelete("k1")
	require.NoError(t, mgr.ForceFlush())

	_, err = mgr.Read("k1")
	require.ErrorIs(t, err, db.ErrKeyNotFound)
	_, err = mgr.Read("missing")
	require.ErrorIs(t, err, db.ErrKeyNotFound)
}

func TestScanPrefix(t *testing.T) {
	mgr := newTestDB(t)

	for i := 0; i < 5; i++ {
		mgr.EnqueueSet(fmt.Sprintf("scan_%d", i), fmt.Sprintf("val_%d", i))
	}
	mgr.EnqueueSet("other_0", "x")
	require.NoError(t, mgr.ForceFlush())

	got, err := mgr.Scan("scan_")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []byte("val_3"), got["scan_3"])
}

// 积压超过 maxBatchSize 的写入也要被 ForceFlush 全部排空
func TestForceFlushDrainsBacklog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.MaxBatchSize = 10
	cfg.Database.FlushInterval = time.Hour // 排除定时器干扰

	mgr, err := db.NewManager(t.TempDir(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mgr.Close())
	})

	const n = 100
	for i := 0; i < n; i++ {
		mgr.EnqueueSet(fmt.Sprintf("bulk_%03d", i), "x")
	}
	require.NoError(t, mgr.ForceFlush())

	got, err := mgr.Scan("bulk_")
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestCloseFlushesPending(t *testing.T) {
	dir := t.TempDir()
	mgr, err := db.NewManager(dir, nil)
	require.NoError(t, err)

	mgr.EnqueueSet("pending", "flushed")
	require.NoError(t, mgr.Close())

	reopened, err := db.NewManager(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Read("pending")
	require.NoError(t, err)
	assert.Equal(t, "flushed", string(val))
}

func TestNextEventSeqMonotonic(t *testing.T) {
	mgr := newTestDB(t)

	prev, err := mgr.NextEventSeq()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := mgr.NextEventSeq()
		require.NoError(t, err)
		require.Greater(t, next, prev)
		prev = next
	}
}
