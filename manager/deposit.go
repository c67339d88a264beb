// manager/deposit.go
package manager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/logs"
	"vaultmanager/types"
)

// DepositByToken 向 token 当前 vault（最新创建的那个）入金。
// caller 必须是 trustee（或 legacy 模式下的 permitted 成员），
// 且已把 amount 授权给账本地址。返回目标 vault id。
//
// 顺序约束：先提交记账（余额、聚合），再发起外部转账，
// 这样重入调用看到的已经是更新后的状态。转账失败则补偿回滚。
func (m *Manager) DepositByToken(caller, token common.Address, amount *big.Int) (uint64, error) {
	if err := m.requireOperator(caller); err != nil {
		return 0, err
	}
	vaultID, err := m.currentVaultID(token)
	if err != nil {
		return 0, err
	}
	if !m.depositActive[vaultID] {
		return 0, ErrDepositsFrozen
	}
	if err := m.requireTradeStarted(vaultID); err != nil {
		return 0, err
	}

	if err := m.creditVault(vaultID, token, amount); err != nil {
		return 0, err
	}

	// 外部转账：trustee → vault
	v := m.vaults[vaultID]
	if err := m.tokens[token].TransferFrom(m.addr, caller, v.Address(), amount); err != nil {
		// 转账失败，补偿回滚记账
		m.revertCredit(vaultID, token, amount)
		logs.Warn("[Manager] deposit transfer failed for vault %d: %v", vaultID, err)
		return 0, err
	}

	// 事件只记成功的入金。重入方读的是余额不是事件，放在转账后不破坏先记账约束。
	m.emit(types.EventDeposited, types.DepositedData{VaultID: vaultID, Token: token, Amount: new(big.Int).Set(amount)})
	logs.Info("[Manager] deposited %s of %s into vault %d", amount.String(), token.Hex(), vaultID)
	return vaultID, nil
}

// creditVault 提交入金记账（余额与聚合缓存一起动）
func (m *Manager) creditVault(vaultID uint64, token common.Address, amount *big.Int) error {
	newBal, err := SafeAdd(m.balances[vaultID], amount)
	if err != nil {
		return err
	}
	newAgg, err := SafeAdd(m.tokenBalances[token], amount)
	if err != nil {
		return err
	}
	m.balances[vaultID] = newBal
	m.tokenBalances[token] = newAgg
	m.persistVault(vaultID)
	return nil
}

// revertCredit 撤销一次入金记账（外部转账失败时的补偿路径）
func (m *Manager) revertCredit(vaultID uint64, token common.Address, amount *big.Int) {
	if bal, err := SafeSub(m.balances[vaultID], amount); err == nil {
		m.balances[vaultID] = bal
	}
	if agg, err := SafeSub(m.tokenBalances[token], amount); err == nil {
		m.tokenBalances[token] = agg
	}
	m.persistVault(vaultID)
}
