// manager/views.go
// 只读访问器。未分配 id 的行为遵循对外协议：
// 映射类查询返回零值，余额/属性类查询返回 NotFound。
package manager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/vault"
)

func bigZero() *big.Int {
	return big.NewInt(0)
}

// TotalVaults 已分配的 vault 总数（删除不回退）
func (m *Manager) TotalVaults() uint64 {
	return m.totalVaults
}

// VaultIdToVault 返回 vault 实例；未分配或已删除时返回 nil（映射零值语义）
func (m *Manager) VaultIdToVault(vaultID uint64) *vault.Vault {
	return m.vaults[vaultID]
}

// VaultIdToTokenAddress 返回 vault 绑定的资产地址
func (m *Manager) VaultIdToTokenAddress(vaultID uint64) (common.Address, error) {
	if !m.live.Contains(uint32(vaultID)) {
		return common.Address{}, ErrVaultNotFound
	}
	return m.vaultToken[vaultID], nil
}

// IsDepositActiveForVaultId 未分配 id 返回 false（映射零值语义）
func (m *Manager) IsDepositActiveForVaultId(vaultID uint64) bool {
	return m.depositActive[vaultID]
}

// IsWithdrawalActiveForVaultId 未分配 id 返回 false（映射零值语义）
func (m *Manager) IsWithdrawalActiveForVaultId(vaultID uint64) bool {
	return m.withdrawActive[vaultID]
}

// VaultIdToTradeStartTime 返回 vault 的交易开始时间
func (m *Manager) VaultIdToTradeStartTime(vaultID uint64) (uint64, error) {
	if !m.live.Contains(uint32(vaultID)) {
		return 0, ErrVaultNotFound
	}
	return m.tradeStart[vaultID], nil
}

// GetVaultBalanceByVaultId 返回 vault 余额（账本缓存值）
func (m *Manager) GetVaultBalanceByVaultId(vaultID uint64) (*big.Int, error) {
	if !m.live.Contains(uint32(vaultID)) {
		return nil, ErrVaultNotFound
	}
	return new(big.Int).Set(m.balances[vaultID]), nil
}

// GetCurrentVaultBalanceByToken 返回 token 当前 vault 的余额
func (m *Manager) GetCurrentVaultBalanceByToken(token common.Address) (*big.Int, error) {
	vaultID, err := m.currentVaultID(token)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(m.balances[vaultID]), nil
}

// GetAllVaultBalanceByToken 对 token 的 vault 列表做区间求和：
// 从第 from 个开始取 count 个。区间越界返回 NotFound。
func (m *Manager) GetAllVaultBalanceByToken(token common.Address, from, count int) (*big.Int, error) {
	ids := m.tokenVaults[token]
	if len(ids) == 0 {
		return nil, ErrNoVaultsForToken
	}
	// 减法形式的越界检查，from+count 在极端入参下会回绕
	if from < 0 || count < 0 || from > len(ids) || count > len(ids)-from {
		return nil, ErrVaultNotFound
	}
	total := bigZero()
	for _, id := range ids[from : from+count] {
		total.Add(total, m.balances[id])
	}
	return total, nil
}

// TokenVaultIDs 返回 token 的存活 vault id 列表（创建序副本）
func (m *Manager) TokenVaultIDs(token common.Address) []uint64 {
	ids := m.tokenVaults[token]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// GetAllTokens 返回至少有一个存活 vault 的资产列表（登记序副本）
func (m *Manager) GetAllTokens() []common.Address {
	out := make([]common.Address, len(m.tokenList))
	copy(out, m.tokenList)
	return out
}

// GetTotalNumberOfTokens 已登记资产数量
func (m *Manager) GetTotalNumberOfTokens() int {
	return len(m.tokenList)
}

// LiveVaultCount 存活 vault 数量（删除后小于 TotalVaults）
func (m *Manager) LiveVaultCount() uint64 {
	return m.live.GetCardinality()
}
