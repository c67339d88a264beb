package manager_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultmanager/db"
	"vaultmanager/interfaces"
	"vaultmanager/manager"
	"vaultmanager/token"
)

// 写穿 + 重启恢复的全链路：落库的状态必须能在新进程里原样重建
func TestRestoreFromStore(t *testing.T) {
	dir := t.TempDir()

	dbm, err := db.NewManager(dir, nil)
	require.NoError(t, err)
	store := db.NewLedgerStore(dbm)

	tok := token.New(tokenAddr, "Token", "TKN", governor, initialSupply)

	mgr, err := manager.New(mgrAddr, governor, nil)
	require.NoError(t, err)
	mgr.SetStore(store)
	mgr.SetContractChecker(func(addr common.Address) bool { return addr == trusteeAddr })
	require.NoError(t, mgr.SetTrustee(governor, trusteeAddr))
	require.NoError(t, mgr.SetPermitted(governor, userAddr, true))

	_, err = mgr.CreateNewVault(governor, tok)
	require.NoError(t, err)
	vaultID, err := mgr.CreateNewVaultWithRoyalty(governor, tok, userAddr, 250)
	require.NoError(t, err)

	amount := big.NewInt(4242)
	require.NoError(t, tok.Transfer(governor, trusteeAddr, amount))
	require.NoError(t, tok.Approve(trusteeAddr, mgrAddr, amount))
	_, err = mgr.DepositByToken(trusteeAddr, tokenAddr, amount)
	require.NoError(t, err)

	require.NoError(t, dbm.ForceFlush())
	require.NoError(t, dbm.Close())

	// 模拟重启：重开数据库，读出状态，重建账本
	dbm2, err := db.NewManager(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, dbm2.Close()) })
	store2 := db.NewLedgerStore(dbm2)

	recs, err := store2.LoadVaultRecords()
	require.NoError(t, err)
	nonces, err := store2.LoadNonces()
	require.NoError(t, err)
	permitted, err := store2.LoadPermitted()
	require.NoError(t, err)
	meta, err := store2.LoadMeta()
	require.NoError(t, err)
	require.NotNil(t, meta)

	restored, err := manager.New(mgrAddr, common.Address{}, nil)
	require.NoError(t, err)
	registry := map[common.Address]interfaces.TokenContract{tokenAddr: tok}
	require.NoError(t, restored.Restore(recs, nonces, permitted, meta, registry))

	assert.Equal(t, governor, restored.Governor())
	assert.Equal(t, trusteeAddr, restored.Trustee())
	assert.Equal(t, uint64(2), restored.TotalVaults())
	assert.True(t, restored.IsPermitted(userAddr))

	bal, err := restored.GetVaultBalanceByVaultId(vaultID)
	require.NoError(t, err)
	assert.Equal(t, amount, bal)

	sum, err := restored.GetAllVaultBalanceByToken(tokenAddr, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, amount, sum)

	receiver, royalty, err := restored.RoyaltyInfo(vaultID, big.NewInt(10000))
	require.NoError(t, err)
	assert.Equal(t, userAddr, receiver)
	assert.Equal(t, int64(250), royalty.Int64())

	// 恢复后的账本照常继续服务
	require.NoError(t, restored.WithdrawByVaultId(trusteeAddr, vaultID, userAddr, amount))
	assert.Equal(t, amount, tok.BalanceOf(userAddr))
}
