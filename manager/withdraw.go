// manager/withdraw.go
package manager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/logs"
	"vaultmanager/types"
)

// WithdrawByVaultId 从 vault 提走 amount 给 to。
// caller 必须是 trustee（或 legacy 模式下的 permitted 成员）。
// 记账先行：余额扣减提交后才指示 vault 发起外部转账，
// 重入调用无法凭旧余额二次提取。
func (m *Manager) WithdrawByVaultId(caller common.Address, vaultID uint64, to common.Address, amount *big.Int) error {
	if err := m.requireOperator(caller); err != nil {
		return err
	}
	if !m.live.Contains(uint32(vaultID)) {
		return ErrVaultNotFound
	}
	if !m.withdrawActive[vaultID] {
		return ErrWithdrawalsFrozen
	}
	if err := m.requireTradeStarted(vaultID); err != nil {
		return err
	}
	if m.balances[vaultID].Cmp(amount) < 0 {
		return ErrNotEnoughBalance
	}

	token := m.vaultToken[vaultID]

	// 效果先行
	newBal, err := SafeSub(m.balances[vaultID], amount)
	if err != nil {
		return err
	}
	newAgg, err := SafeSub(m.tokenBalances[token], amount)
	if err != nil {
		return err
	}
	m.balances[vaultID] = newBal
	m.tokenBalances[token] = newAgg
	m.persistVault(vaultID)

	// 交互最后
	if err := m.vaults[vaultID].Withdraw(m.addr, to, amount); err != nil {
		// vault 侧转账失败，补偿回滚
		m.balances[vaultID] = new(big.Int).Add(m.balances[vaultID], amount)
		m.tokenBalances[token] = new(big.Int).Add(m.tokenBalances[token], amount)
		m.persistVault(vaultID)
		logs.Warn("[Manager] withdraw transfer failed for vault %d: %v", vaultID, err)
		return err
	}

	// 事件只记成功的提现。重入方读的是余额不是事件，放在转账后不破坏先记账约束。
	m.emit(types.EventWithdrawn, types.WithdrawnData{VaultID: vaultID, Token: token, Amount: new(big.Int).Set(amount)})
	logs.Info("[Manager] withdrew %s of %s from vault %d to %s", amount.String(), token.Hex(), vaultID, to.Hex())
	return nil
}
