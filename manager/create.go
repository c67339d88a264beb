// manager/create.go
// vault 创建。四种参数组合是同一语义操作的重载，
// 除可选字段外副作用完全一致。
package manager

import (
	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/interfaces"
	"vaultmanager/logs"
	"vaultmanager/types"
	"vaultmanager/utils"
	"vaultmanager/vault"
)

// CreateNewVault 为 token 创建新 vault，返回新 vault id
func (m *Manager) CreateNewVault(caller common.Address, token interfaces.TokenContract) (uint64, error) {
	return m.createVault(caller, token, 0, common.Address{}, 0, false)
}

// CreateNewVaultWithTradeStartTime 创建带交易开始时间的 vault
func (m *Manager) CreateNewVaultWithTradeStartTime(caller common.Address, token interfaces.TokenContract, tradeStartTime uint64) (uint64, error) {
	return m.createVault(caller, token, tradeStartTime, common.Address{}, 0, false)
}

// CreateNewVaultWithRoyalty 创建带版税配置的 vault
func (m *Manager) CreateNewVaultWithRoyalty(caller common.Address, token interfaces.TokenContract, royaltyReceiver common.Address, feeNumerator uint64) (uint64, error) {
	return m.createVault(caller, token, 0, royaltyReceiver, feeNumerator, true)
}

// CreateNewVaultFull 创建同时带交易开始时间与版税配置的 vault
func (m *Manager) CreateNewVaultFull(caller common.Address, token interfaces.TokenContract, tradeStartTime uint64, royaltyReceiver common.Address, feeNumerator uint64) (uint64, error) {
	return m.createVault(caller, token, tradeStartTime, royaltyReceiver, feeNumerator, true)
}

func (m *Manager) createVault(
	caller common.Address,
	token interfaces.TokenContract,
	tradeStartTime uint64,
	royaltyReceiver common.Address,
	feeNumerator uint64,
	withRoyalty bool,
) (uint64, error) {
	if err := m.requireGovernor(caller); err != nil {
		return 0, err
	}
	if token == nil || token.Address() == (common.Address{}) {
		return 0, ErrZeroAddress
	}
	if withRoyalty {
		if royaltyReceiver == (common.Address{}) {
			return 0, ErrZeroAddress
		}
		if feeNumerator > RoyaltyDenominator {
			return 0, ErrRoyaltyTooHigh
		}
	}

	tokenAddr := token.Address()
	vaultID := m.totalVaults
	m.totalVaults++

	v := vault.New(token, m.addr, utils.VaultAddress(m.addr, vaultID))
	m.tokens[tokenAddr] = token
	m.vaults[vaultID] = v
	m.vaultToken[vaultID] = tokenAddr
	if len(m.tokenVaults[tokenAddr]) == 0 {
		m.tokenList = append(m.tokenList, tokenAddr)
	}
	m.tokenVaults[tokenAddr] = append(m.tokenVaults[tokenAddr], vaultID)
	m.live.Add(uint32(vaultID))

	m.depositActive[vaultID] = true
	m.withdrawActive[vaultID] = true
	m.tradeStart[vaultID] = tradeStartTime
	m.balances[vaultID] = bigZero()
	if m.tokenBalances[tokenAddr] == nil {
		m.tokenBalances[tokenAddr] = bigZero()
	}
	if withRoyalty {
		m.royaltyReceiver[vaultID] = royaltyReceiver
		m.royaltyFee[vaultID] = feeNumerator
	}

	m.persistVault(vaultID)
	m.persistMeta()

	m.emit(types.EventVaultCreated, types.VaultCreatedData{VaultID: vaultID, Token: tokenAddr})
	if withRoyalty {
		m.emit(types.EventVaultRoyaltySet, types.VaultRoyaltySetData{
			VaultID:      vaultID,
			Token:        tokenAddr,
			Receiver:     royaltyReceiver,
			FeeNumerator: feeNumerator,
		})
	}
	logs.Info("[Manager] created vault %d for token %s (tradeStart=%d royalty=%v)",
		vaultID, tokenAddr.Hex(), tradeStartTime, withRoyalty)
	return vaultID, nil
}
