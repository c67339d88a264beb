// manager/royalty.go
package manager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RoyaltyInfo 纯读操作：返回 (receiver, salePrice * feeNumerator / 10000)，
// 整数除法向下取整。未配置版税时返回 (零地址, 0)。
// 未分配的 vault id 与其它读访问器保持一致，返回 NotFound。
func (m *Manager) RoyaltyInfo(vaultID uint64, salePrice *big.Int) (common.Address, *big.Int, error) {
	if !m.live.Contains(uint32(vaultID)) {
		return common.Address{}, nil, ErrVaultNotFound
	}
	receiver, ok := m.royaltyReceiver[vaultID]
	if !ok {
		return common.Address{}, big.NewInt(0), nil
	}
	amount := new(big.Int).Mul(salePrice, new(big.Int).SetUint64(m.royaltyFee[vaultID]))
	amount.Quo(amount, big.NewInt(RoyaltyDenominator))
	return receiver, amount, nil
}
