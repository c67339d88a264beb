// trustee/trustee.go
// 参考 Trustee 实现：负责实际的资产搬运，然后通知账本更新记账。
// 账本侧只认 trustee 地址，业务门槛（KYC、费率等）由 trustee 自己把关。
package trustee

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/interfaces"
	"vaultmanager/logs"
	"vaultmanager/manager"
)

// Trustee 唯一获准调用账本 deposit/withdraw 的特权角色
type Trustee struct {
	addr common.Address
	mgr  *manager.Manager
}

// New 创建绑定到指定账本的 trustee
func New(addr common.Address, mgr *manager.Manager) *Trustee {
	return &Trustee{addr: addr, mgr: mgr}
}

// Address trustee 自身地址
func (t *Trustee) Address() common.Address {
	return t.addr
}

// Deposit 代 sender 入金：从 sender 拉取资产，授权账本划转，再通知记账。
// 返回目标 vault id。
func (t *Trustee) Deposit(sender common.Address, token interfaces.TokenContract, amount *big.Int) (uint64, error) {
	if err := token.TransferFrom(t.addr, sender, t.addr, amount); err != nil {
		return 0, err
	}
	if err := token.Approve(t.addr, t.mgr.Address(), amount); err != nil {
		return 0, err
	}
	vaultID, err := t.mgr.DepositByToken(t.addr, token.Address(), amount)
	if err != nil {
		// 账本拒绝后原路退回，避免资产滞留在 trustee
		if rerr := token.Transfer(t.addr, sender, amount); rerr != nil {
			logs.Error("[Trustee] refund to %s failed, funds stranded: %v", sender.Hex(), rerr)
		}
		return 0, err
	}
	return vaultID, nil
}

// Withdraw 指示账本从 vault 提现给 to
func (t *Trustee) Withdraw(vaultID uint64, to common.Address, amount *big.Int) error {
	return t.mgr.WithdrawByVaultId(t.addr, vaultID, to, amount)
}

// SafeDeposit 代 depositor 执行签名授权存款。
// sender 是交易发起方（tx.origin 语义），账本要求它等于 depositor。
func (t *Trustee) SafeDeposit(sender common.Address, token interfaces.TokenContract, amount *big.Int, depositor common.Address, signature []byte) (uint64, error) {
	if err := token.TransferFrom(t.addr, depositor, t.addr, amount); err != nil {
		return 0, err
	}
	if err := token.Approve(t.addr, t.mgr.Address(), amount); err != nil {
		return 0, err
	}
	vaultID, err := t.mgr.SafeDeposit(t.addr, sender, token.Address(), amount, depositor, signature)
	if err != nil {
		if rerr := token.Transfer(t.addr, depositor, amount); rerr != nil {
			logs.Error("[Trustee] refund to %s failed, funds stranded: %v", depositor.Hex(), rerr)
		}
		return 0, err
	}
	return vaultID, nil
}
