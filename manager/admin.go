// manager/admin.go
// governor 专属的生命周期管理操作。
package manager

import (
	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/logs"
	"vaultmanager/types"
)

// SetActiveStatusForVaultId 无条件覆盖 vault 的两个冻结开关
func (m *Manager) SetActiveStatusForVaultId(caller common.Address, vaultID uint64, depositActive, withdrawActive bool) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if !m.live.Contains(uint32(vaultID)) {
		return ErrVaultNotFound
	}
	m.depositActive[vaultID] = depositActive
	m.withdrawActive[vaultID] = withdrawActive
	m.persistVault(vaultID)
	m.emit(types.EventVaultStatusUpdate, types.VaultStatusUpdateData{
		VaultID:        vaultID,
		DepositActive:  depositActive,
		WithdrawActive: withdrawActive,
	})
	logs.Info("[Manager] vault %d status: deposit=%v withdraw=%v", vaultID, depositActive, withdrawActive)
	return nil
}

// SetTradeStartTime 覆盖 vault 的交易开始时间；0 表示不设闸
func (m *Manager) SetTradeStartTime(caller common.Address, vaultID uint64, timestamp uint64) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if !m.live.Contains(uint32(vaultID)) {
		return ErrVaultNotFound
	}
	m.tradeStart[vaultID] = timestamp
	m.persistVault(vaultID)
	return nil
}

// SetTrustee 首次设置 trustee。目标必须是合约地址且非零；
// 只允许从未设置状态设置一次，之后只能走 UpdateTrustee。
func (m *Manager) SetTrustee(caller, trustee common.Address) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if m.trustee != (common.Address{}) {
		return ErrTrusteeAlreadySet
	}
	if err := m.checkTrusteeTarget(trustee); err != nil {
		return err
	}
	m.trustee = trustee
	m.persistMeta()
	m.emit(types.EventTrusteeUpdated, types.TrusteeUpdatedData{Trustee: trustee})
	logs.Info("[Manager] trustee set to %s", trustee.Hex())
	return nil
}

// UpdateTrustee 替换已配置的 trustee
func (m *Manager) UpdateTrustee(caller, trustee common.Address) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if m.trustee == (common.Address{}) {
		return ErrTrusteeNotSet
	}
	if err := m.checkTrusteeTarget(trustee); err != nil {
		return err
	}
	m.trustee = trustee
	m.persistMeta()
	m.emit(types.EventTrusteeUpdated, types.TrusteeUpdatedData{Trustee: trustee})
	logs.Info("[Manager] trustee updated to %s", trustee.Hex())
	return nil
}

func (m *Manager) checkTrusteeTarget(trustee common.Address) error {
	if trustee == (common.Address{}) {
		return ErrZeroAddress
	}
	if m.isContract != nil && !m.isContract(trustee) {
		return ErrEOANotAllowed
	}
	return nil
}

// SetPermitted 维护 legacy 许可名单（无 trustee 模式下的直连调用资格）
func (m *Manager) SetPermitted(caller, addr common.Address, allowed bool) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	if allowed {
		m.permitted[addr] = true
	} else {
		delete(m.permitted, addr)
	}
	if m.store != nil {
		if err := m.store.SavePermitted(addr.Hex(), allowed); err != nil {
			logs.Error("[Manager] failed to persist permitted %s: %v", addr.Hex(), err)
		}
	}
	m.emit(types.EventPermittedUpdated, types.PermittedUpdatedData{Address: addr, Allowed: allowed})
	return nil
}

// IsPermitted 查询许可名单
func (m *Manager) IsPermitted(addr common.Address) bool {
	return m.permitted[addr]
}

// TransferGovernorship 转移 governor 身份
func (m *Manager) TransferGovernorship(caller, newGovernor common.Address) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	if newGovernor == (common.Address{}) {
		return ErrZeroAddress
	}
	old := m.governor
	m.governor = newGovernor
	m.persistMeta()
	m.emit(types.EventGovernorshipMoved, types.GovernorshipMovedData{OldGovernor: old, NewGovernor: newGovernor})
	logs.Info("[Manager] governorship transferred %s -> %s", old.Hex(), newGovernor.Hex())
	return nil
}

// DeleteVault 删除 token 的当前 vault。只有余额为零时允许；
// id 摘除后不再复用，tokenVaults 列表同步去掉该 id。
func (m *Manager) DeleteVault(caller, token common.Address) error {
	if err := m.requireGovernor(caller); err != nil {
		return err
	}
	vaultID, err := m.currentVaultID(token)
	if err != nil {
		return err
	}
	if m.balances[vaultID].Sign() != 0 {
		return ErrVaultNotEmpty
	}

	ids := m.tokenVaults[token]
	m.tokenVaults[token] = ids[:len(ids)-1]
	if len(m.tokenVaults[token]) == 0 {
		delete(m.tokenVaults, token)
		for i, t := range m.tokenList {
			if t == token {
				m.tokenList = append(m.tokenList[:i], m.tokenList[i+1:]...)
				break
			}
		}
	}
	m.live.Remove(uint32(vaultID))
	delete(m.vaults, vaultID)
	delete(m.vaultToken, vaultID)
	delete(m.balances, vaultID)
	delete(m.depositActive, vaultID)
	delete(m.withdrawActive, vaultID)
	delete(m.tradeStart, vaultID)
	delete(m.royaltyReceiver, vaultID)
	delete(m.royaltyFee, vaultID)

	if m.store != nil {
		if err := m.store.DeleteVault(vaultID); err != nil {
			logs.Error("[Manager] failed to delete vault %d from store: %v", vaultID, err)
		}
	}
	m.emit(types.EventVaultDeleted, types.VaultDeletedData{VaultID: vaultID, Token: token})
	logs.Info("[Manager] deleted vault %d for token %s", vaultID, token.Hex())
	return nil
}
