package db_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultmanager/db"
	"vaultmanager/keys"
	"vaultmanager/types"
)

func vaultRec(id uint64, balance string) types.VaultRecord {
	return types.VaultRecord{
		ID:             id,
		Token:          "0x00000000000000000000000000000000000000b0",
		DepositActive:  true,
		WithdrawActive: true,
		Balance:        balance,
	}
}

func TestSaveLoadVaultRecords(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveVault(vaultRec(2, "300")))
	require.NoError(t, store.SaveVault(vaultRec(0, "100")))
	require.NoError(t, store.SaveVault(vaultRec(1, "200")))
	require.NoError(t, mgr.ForceFlush())

	recs, err := store.LoadVaultRecords()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// 恢复时按 id 升序，保证"当前 vault"次序可复原
	for i, rec := range recs {
		assert.Equal(t, uint64(i), rec.ID)
	}
	assert.Equal(t, "200", recs[1].Balance)
}

func TestDeleteVaultRecord(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveVault(vaultRec(0, "100")))
	require.NoError(t, store.DeleteVault(0))
	require.NoError(t, mgr.ForceFlush())

	recs, err := store.LoadVaultRecords()
	require.NoError(t, err)
	assert.Empty(t, recs)

	ids, err := store.ScanVaultIDsByBalanceDesc()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBalanceIndexOrdering(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveVault(vaultRec(0, "50")))
	require.NoError(t, store.SaveVault(vaultRec(1, "99999999999999999999999999")))
	require.NoError(t, store.SaveVault(vaultRec(2, "7000")))
	require.NoError(t, mgr.ForceFlush())

	ids, err := store.ScanVaultIDsByBalanceDesc()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 0}, ids)

	// 更新余额后索引迁移，旧条目不得残留
	require.NoError(t, store.SaveVault(vaultRec(0, "1000000")))
	require.NoError(t, mgr.ForceFlush())

	ids, err = store.ScanVaultIDsByBalanceDesc()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 0, 2}, ids)
}

func TestSaveLoadNonces(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveNonce("0xaa", 3))
	require.NoError(t, store.SaveNonce("0xbb", 7))
	require.NoError(t, store.SaveNonce("0xaa", 4)) // 覆盖写
	require.NoError(t, mgr.ForceFlush())

	nonces, err := store.LoadNonces()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"0xaa": 4, "0xbb": 7}, nonces)
}

func TestSaveLoadPermitted(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SavePermitted("0xaa", true))
	require.NoError(t, store.SavePermitted("0xbb", true))
	require.NoError(t, store.SavePermitted("0xaa", false))
	require.NoError(t, mgr.ForceFlush())

	permitted, err := store.LoadPermitted()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xbb"}, permitted)
}

func TestSaveLoadMeta(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	// 从未写入
	meta, err := store.LoadMeta()
	require.NoError(t, err)
	assert.Nil(t, meta)

	saved := types.LedgerMeta{Governor: "0xa1", Trustee: "0xa2", TotalVaults: 5}
	require.NoError(t, store.SaveMeta(saved))
	require.NoError(t, mgr.ForceFlush())

	meta, err = store.LoadMeta()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, saved, *meta)
}

// vault 记录前缀与余额索引前缀不得互相覆盖：
// 记录扫描里只能出现记录，索引扫描里只能出现索引条目
func TestVaultKeyPrefixesDisjoint(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveVault(vaultRec(0, "100")))
	require.NoError(t, store.SaveVault(vaultRec(1, "200")))
	require.NoError(t, mgr.ForceFlush())

	recRaw, err := mgr.Scan(keys.NameOfKeyVault())
	require.NoError(t, err)
	require.Len(t, recRaw, 2)
	for k := range recRaw {
		assert.False(t, strings.HasPrefix(k, keys.NameOfKeyVaultBalanceIndex()), "index entry %s leaked into record scan", k)
	}

	idxRaw, err := mgr.Scan(keys.NameOfKeyVaultBalanceIndex())
	require.NoError(t, err)
	require.Len(t, idxRaw, 2)

	// 恢复路径拿到的也必须恰好是两条记录
	recs, err := store.LoadVaultRecords()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestRebuildLiveVaultIDs(t *testing.T) {
	mgr := newTestDB(t)
	store := db.NewLedgerStore(mgr)

	require.NoError(t, store.SaveVault(vaultRec(0, "1")))
	require.NoError(t, store.SaveVault(vaultRec(1, "1")))
	require.NoError(t, store.SaveVault(vaultRec(2, "1")))
	require.NoError(t, store.DeleteVault(1))
	require.NoError(t, mgr.ForceFlush())

	live, err := store.RebuildLiveVaultIDs()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), live.GetCardinality())
	assert.True(t, live.Contains(0))
	assert.False(t, live.Contains(1))
	assert.True(t, live.Contains(2))
}
