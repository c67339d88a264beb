package interfaces

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/types"
)

// ========== 核心接口定义 ==========

// TokenContract 外部同质化资产合约。
// 调用方身份通过显式参数传入（from / spender），对应链上的 msg.sender。
// 转账可能回调进账本（重入），账本侧必须先记账后转账。
type TokenContract interface {
	Address() common.Address
	BalanceOf(owner common.Address) *big.Int
	// Transfer 由 from 发起，把 amount 转给 to
	Transfer(from, to common.Address, amount *big.Int) error
	// TransferFrom 由 spender 发起，消耗 from 给 spender 的授权额度
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
	Approve(owner, spender common.Address, amount *big.Int) error
	Allowance(owner, spender common.Address) *big.Int
}

// EventSink 接收账本状态变更通知
type EventSink interface {
	Emit(evt types.BaseEvent)
}

// LedgerStore 账本写穿（write-through）持久化接口。
// 每次状态变更后由 Manager 同步调用；实现方负责落库顺序与批量。
type LedgerStore interface {
	SaveVault(rec types.VaultRecord) error
	DeleteVault(vaultID uint64) error
	SaveNonce(address string, nonce uint64) error
	SavePermitted(address string, allowed bool) error
	SaveMeta(meta types.LedgerMeta) error
}

// DBManager 数据库管理器接口
type DBManager interface {
	EnqueueSet(key, value string)
	EnqueueDelete(key string)
	ForceFlush() error
	Read(key string) ([]byte, error)
	// 前缀扫描，返回所有以 prefix 开头的键值对
	Scan(prefix string) (map[string][]byte, error)
	// 事件日志的自增发号
	NextEventSeq() (uint64, error)
	Close() error
}
