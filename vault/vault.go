// vault/vault.go
// 单一资产槽位的余额保管者。只有绑定的 manager 地址可以提走资产。
package vault

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/interfaces"
)

var (
	// ErrNotManager 非 manager 调用 withdraw
	ErrNotManager = errors.New("Vault: Only manager can call this function")
	// ErrNotEnoughBalance 提现金额超过 vault 实际余额
	ErrNotEnoughBalance = errors.New("Vault: Not enough balance")
)

// Vault 持有单一资产的余额。
// 余额的权威值是 token 合约上 vault 自身地址的 balanceOf。
type Vault struct {
	token   interfaces.TokenContract
	manager common.Address
	addr    common.Address
}

// New 创建绑定到 (token, manager) 的 vault，addr 是 vault 自身地址
func New(token interfaces.TokenContract, manager, addr common.Address) *Vault {
	return &Vault{
		token:   token,
		manager: manager,
		addr:    addr,
	}
}

// TokenAddress 绑定的资产地址，vault 生命周期内不可变
func (v *Vault) TokenAddress() common.Address {
	return v.token.Address()
}

// Manager 绑定的 manager 地址
func (v *Vault) Manager() common.Address {
	return v.manager
}

// Address vault 自身地址
func (v *Vault) Address() common.Address {
	return v.addr
}

// TokenBalance 返回 token 合约视角的真实余额
func (v *Vault) TokenBalance() *big.Int {
	return v.token.BalanceOf(v.addr)
}

// Withdraw 把 amount 转给 to。调用者必须是绑定的 manager。
// 先做全部校验，再发起外部转账。
func (v *Vault) Withdraw(caller, to common.Address, amount *big.Int) error {
	if caller != v.manager {
		return ErrNotManager
	}
	if v.TokenBalance().Cmp(amount) < 0 {
		return ErrNotEnoughBalance
	}
	return v.token.Transfer(v.addr, to, amount)
}
