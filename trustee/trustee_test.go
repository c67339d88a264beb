package trustee_test

import (
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultmanager/manager"
	"vaultmanager/token"
	"vaultmanager/trustee"
	"vaultmanager/utils"
)

var (
	mgrAddr     = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	governor    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	trusteeAddr = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	userAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

// newProtocolEnv 搭好完整协议栈：账本 + trustee + 资产 + 一个 vault
func newProtocolEnv(t *testing.T) (*manager.Manager, *trustee.Trustee, *token.Token) {
	t.Helper()
	mgr, err := manager.New(mgrAddr, governor, nil)
	require.NoError(t, err)
	mgr.SetContractChecker(func(addr common.Address) bool {
		return addr == trusteeAddr
	})
	require.NoError(t, mgr.SetTrustee(governor, trusteeAddr))

	tok := token.New(tokenAddr, "Token", "TKN", governor, big.NewInt(1_000_000))
	_, err = mgr.CreateNewVault(governor, tok)
	require.NoError(t, err)

	return mgr, trustee.New(trusteeAddr, mgr), tok
}

func TestTrusteeDepositWithdraw(t *testing.T) {
	mgr, tr, tok := newProtocolEnv(t)

	amount := big.NewInt(1000)
	require.NoError(t, tok.Transfer(governor, userAddr, amount))
	require.NoError(t, tok.Approve(userAddr, trusteeAddr, amount))

	vaultID, err := tr.Deposit(userAddr, tok, amount)
	require.NoError(t, err)

	// 资产落在 vault 地址上，trustee 手里不留余额
	v := mgr.VaultIdToVault(vaultID)
	assert.Equal(t, amount, tok.BalanceOf(v.Address()))
	assert.Equal(t, int64(0), tok.BalanceOf(trusteeAddr).Int64())
	assert.Equal(t, int64(0), tok.BalanceOf(userAddr).Int64())

	require.NoError(t, tr.Withdraw(vaultID, userAddr, amount))
	assert.Equal(t, amount, tok.BalanceOf(userAddr))

	bal, err := mgr.GetVaultBalanceByVaultId(vaultID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Int64())
}

func TestTrusteeDepositNoAllowance(t *testing.T) {
	_, tr, tok := newProtocolEnv(t)

	require.NoError(t, tok.Transfer(governor, userAddr, big.NewInt(1000)))
	_, err := tr.Deposit(userAddr, tok, big.NewInt(1000))
	require.ErrorIs(t, err, token.ErrInsufficientAllowance)
}

// 账本拒绝后 trustee 必须把已拉取的资产原路退回
func TestTrusteeDepositRefundOnLedgerReject(t *testing.T) {
	mgr, tr, tok := newProtocolEnv(t)
	require.NoError(t, mgr.SetActiveStatusForVaultId(governor, 0, false, true))

	amount := big.NewInt(1000)
	require.NoError(t, tok.Transfer(governor, userAddr, amount))
	require.NoError(t, tok.Approve(userAddr, trusteeAddr, amount))

	_, err := tr.Deposit(userAddr, tok, amount)
	require.ErrorIs(t, err, manager.ErrDepositsFrozen)
	assert.Equal(t, amount, tok.BalanceOf(userAddr))
	assert.Equal(t, int64(0), tok.BalanceOf(trusteeAddr).Int64())
}

// 退款也失败时（trustee 被中途掏空），返回的仍须是账本的拒绝原因
func TestTrusteeRefundFailureKeepsLedgerError(t *testing.T) {
	mgr, tr, tok := newProtocolEnv(t)
	require.NoError(t, mgr.SetActiveStatusForVaultId(governor, 0, false, true))

	amount := big.NewInt(1000)
	require.NoError(t, tok.Transfer(governor, userAddr, amount))
	require.NoError(t, tok.Approve(userAddr, trusteeAddr, amount))

	// 拉取入账的瞬间把 trustee 余额抽走，后续退款必然失败
	tok.SetTransferHook(func(from, to common.Address, a *big.Int) {
		if to == trusteeAddr {
			tok.SetTransferHook(nil)
			require.NoError(t, tok.Transfer(trusteeAddr, governor, a))
		}
	})

	_, err := tr.Deposit(userAddr, tok, amount)
	require.ErrorIs(t, err, manager.ErrDepositsFrozen)
}

func TestTrusteeSafeDeposit(t *testing.T) {
	mgr, tr, tok := newProtocolEnv(t)

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	depositor := utils.PrivKeyAddress(priv)

	amount := big.NewInt(1000)
	require.NoError(t, tok.Transfer(governor, depositor, amount))
	require.NoError(t, tok.Approve(depositor, trusteeAddr, amount))

	digest := utils.SignedDepositDigest(utils.DepositMessageHash(tokenAddr, depositor, amount, mgr.Nonces(depositor)))
	sig := utils.SignDigest(priv, digest)

	vaultID, err := tr.SafeDeposit(depositor, tok, amount, depositor, sig)
	require.NoError(t, err)

	bal, err := mgr.GetVaultBalanceByVaultId(vaultID)
	require.NoError(t, err)
	assert.Equal(t, amount, bal)
	assert.Equal(t, uint64(1), mgr.Nonces(depositor))
	assert.Equal(t, int64(0), tok.BalanceOf(depositor).Int64())
}

// 签名无效时 depositor 的资产必须被退回
func TestTrusteeSafeDepositRefundOnBadSignature(t *testing.T) {
	mgr, tr, tok := newProtocolEnv(t)

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	other, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	depositor := utils.PrivKeyAddress(priv)

	amount := big.NewInt(1000)
	require.NoError(t, tok.Transfer(governor, depositor, amount))
	require.NoError(t, tok.Approve(depositor, trusteeAddr, amount))

	digest := utils.SignedDepositDigest(utils.DepositMessageHash(tokenAddr, depositor, amount, mgr.Nonces(depositor)))
	sig := utils.SignDigest(other, digest)

	_, err = tr.SafeDeposit(depositor, tok, amount, depositor, sig)
	require.ErrorIs(t, err, manager.ErrOnlyOriginDeposit)
	assert.Equal(t, amount, tok.BalanceOf(depositor))
	assert.Equal(t, uint64(0), mgr.Nonces(depositor))
}
