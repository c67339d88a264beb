// token/token.go
// 内存版 ERC20 风格资产合约，作为外部协作方的测试替身。
// 支持注入转账回调，用来模拟恶意合约在转账时重入账本。
package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("ERC20: insufficient allowance")
)

// TransferHook 每次转账成功后触发，用于重入测试
type TransferHook func(from, to common.Address, amount *big.Int)

// Token 单一资产的内存实现
type Token struct {
	mu        sync.Mutex
	addr      common.Address
	name      string
	symbol    string
	balances  map[common.Address]*big.Int
	allowance map[common.Address]map[common.Address]*big.Int
	hook      TransferHook
}

// New 创建资产并把初始供应量全部记到 owner 名下
func New(addr common.Address, name, symbol string, owner common.Address, supply *big.Int) *Token {
	t := &Token{
		addr:      addr,
		name:      name,
		symbol:    symbol,
		balances:  make(map[common.Address]*big.Int),
		allowance: make(map[common.Address]map[common.Address]*big.Int),
	}
	t.balances[owner] = new(big.Int).Set(supply)
	return t
}

// SetTransferHook 注入转账后回调（重入测试用）
func (t *Token) SetTransferHook(hook TransferHook) {
	t.hook = hook
}

func (t *Token) Address() common.Address { return t.addr }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }

// BalanceOf 返回余额副本
func (t *Token) BalanceOf(owner common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

// Transfer 由 from 发起的直接转账
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if t.hook != nil {
		t.hook(from, to, amount)
	}
	return nil
}

// TransferFrom 由 spender 发起，消耗 from 的授权额度
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	allowed := t.allowanceLocked(from, spender)
	if allowed.Cmp(amount) < 0 {
		t.mu.Unlock()
		return ErrInsufficientAllowance
	}
	t.allowance[from][spender] = new(big.Int).Sub(allowed, amount)
	t.mu.Unlock()

	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if t.hook != nil {
		t.hook(from, to, amount)
	}
	return nil
}

// Approve 设置 owner → spender 的授权额度
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allowance[owner] == nil {
		t.allowance[owner] = make(map[common.Address]*big.Int)
	}
	t.allowance[owner][spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance 查询授权额度
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.allowanceLocked(owner, spender))
}

func (t *Token) allowanceLocked(owner, spender common.Address) *big.Int {
	if m, ok := t.allowance[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return big.NewInt(0)
}

func (t *Token) move(from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.balances[from] = new(big.Int).Sub(bal, amount)

	toBal := t.balances[to]
	if toBal == nil {
		toBal = big.NewInt(0)
	}
	t.balances[to] = new(big.Int).Add(toBal, amount)
	return nil
}
