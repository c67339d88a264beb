// manager/manager.go
// Vault 注册表与托管账本。所有改变余额的操作都经过三层能力检查
// （governor / trustee / permitted），并遵循先记账后转账的顺序约束。
package manager

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/config"
	"vaultmanager/interfaces"
	"vaultmanager/logs"
	"vaultmanager/types"
	"vaultmanager/utils"
	"vaultmanager/vault"
)

// RoyaltyDenominator 版税分母（basis points）
const RoyaltyDenominator = 10000

// Manager 中心注册表：vault 映射、按资产聚合、访问控制与 nonce 表。
// 宿主环境保证全序执行，唯一的并发威胁是外部转账回调造成的重入，
// 因此这里不加锁，靠先记账后转账的顺序约束保证一致。
type Manager struct {
	addr     common.Address
	governor common.Address
	trustee  common.Address // 零地址表示未设置

	// isContract 判断地址是否为合约（EOA 检查）。为 nil 时跳过该检查。
	isContract func(common.Address) bool

	permitted map[common.Address]bool

	tokens      map[common.Address]interfaces.TokenContract
	vaults      map[uint64]*vault.Vault
	vaultToken  map[uint64]common.Address
	tokenVaults map[common.Address][]uint64 // 每个资产的存活 vault id，创建序
	tokenList   []common.Address            // 资产登记序

	// live 存活 vault id 位图（arena 模式：删除只摘除槽位，id 不复用）
	live *roaring.Bitmap

	depositActive   map[uint64]bool
	withdrawActive  map[uint64]bool
	tradeStart      map[uint64]uint64
	royaltyReceiver map[uint64]common.Address
	royaltyFee      map[uint64]uint64

	// balances 是去范式化缓存；权威值在 vault 的 token 余额上。
	// 不变量：sum(balances of vaults with token t) == tokenBalances[t]
	balances      map[uint64]*big.Int
	tokenBalances map[common.Address]*big.Int

	nonces map[common.Address]uint64

	totalVaults uint64

	// Now 可替换时钟，tradeStartTime 闸门用
	Now func() time.Time

	events interfaces.EventSink
	store  interfaces.LedgerStore

	recoverCache *utils.RecoverCache
}

// New 创建账本。addr 是账本自身地址，governor 是唯一管理者。
func New(addr, governor common.Address, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	rc, err := utils.NewRecoverCache(cfg.Ledger.RecoverCacheSize)
	if err != nil {
		return nil, err
	}
	return &Manager{
		addr:            addr,
		governor:        governor,
		permitted:       make(map[common.Address]bool),
		tokens:          make(map[common.Address]interfaces.TokenContract),
		vaults:          make(map[uint64]*vault.Vault),
		vaultToken:      make(map[uint64]common.Address),
		tokenVaults:     make(map[common.Address][]uint64),
		live:            roaring.New(),
		depositActive:   make(map[uint64]bool),
		withdrawActive:  make(map[uint64]bool),
		tradeStart:      make(map[uint64]uint64),
		royaltyReceiver: make(map[uint64]common.Address),
		royaltyFee:      make(map[uint64]uint64),
		balances:        make(map[uint64]*big.Int),
		tokenBalances:   make(map[common.Address]*big.Int),
		nonces:          make(map[common.Address]uint64),
		Now:             time.Now,
		recoverCache:    rc,
	}, nil
}

// SetEventSink 挂接事件接收方
func (m *Manager) SetEventSink(sink interfaces.EventSink) {
	m.events = sink
}

// SetStore 挂接写穿持久化
func (m *Manager) SetStore(store interfaces.LedgerStore) {
	m.store = store
}

// SetContractChecker 挂接 EOA 判定（setTrustee / updateTrustee 用）
func (m *Manager) SetContractChecker(fn func(common.Address) bool) {
	m.isContract = fn
}

// Address 账本自身地址
func (m *Manager) Address() common.Address {
	return m.addr
}

// Governor 当前 governor
func (m *Manager) Governor() common.Address {
	return m.governor
}

// Trustee 当前 trustee（零地址表示未设置）
func (m *Manager) Trustee() common.Address {
	return m.trustee
}

// ========== 能力检查 ==========

func (m *Manager) requireGovernor(caller common.Address) error {
	if caller != m.governor {
		return ErrNotGovernor
	}
	return nil
}

// requireOperator 检查 deposit/withdraw 的调用资格：
// 配置了 trustee 时只认 trustee；否则退回 permitted 名单（legacy 模式）。
func (m *Manager) requireOperator(caller common.Address) error {
	if m.trustee != (common.Address{}) {
		if caller != m.trustee {
			return ErrNotTrustee
		}
		return nil
	}
	if !m.permitted[caller] {
		return ErrNotPermitted
	}
	return nil
}

// requireTradeStarted 检查 tradeStartTime 闸门；0 表示不设闸
func (m *Manager) requireTradeStarted(vaultID uint64) error {
	start := m.tradeStart[vaultID]
	if start != 0 && uint64(m.Now().Unix()) < start {
		return ErrTradeNotStarted
	}
	return nil
}

// currentVaultID 解析资产当前 vault（最新创建的那个）
func (m *Manager) currentVaultID(token common.Address) (uint64, error) {
	ids := m.tokenVaults[token]
	if len(ids) == 0 {
		return 0, ErrNoVaultsForToken
	}
	return ids[len(ids)-1], nil
}

// ========== 事件与持久化 ==========

func (m *Manager) emit(eventType types.EventType, data interface{}) {
	if m.events == nil {
		return
	}
	m.events.Emit(types.BaseEvent{EventType: eventType, EventData: data})
}

// persistVault 把 vault 当前状态写穿到存储
func (m *Manager) persistVault(vaultID uint64) {
	if m.store == nil {
		return
	}
	rec := m.vaultRecord(vaultID)
	if err := m.store.SaveVault(rec); err != nil {
		logs.Error("[Manager] failed to persist vault %d: %v", vaultID, err)
	}
}

func (m *Manager) persistMeta() {
	if m.store == nil {
		return
	}
	meta := types.LedgerMeta{
		Governor:    m.governor.Hex(),
		TotalVaults: m.totalVaults,
	}
	if m.trustee != (common.Address{}) {
		meta.Trustee = m.trustee.Hex()
	}
	if err := m.store.SaveMeta(meta); err != nil {
		logs.Error("[Manager] failed to persist ledger meta: %v", err)
	}
}

func (m *Manager) persistNonce(addr common.Address) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveNonce(addr.Hex(), m.nonces[addr]); err != nil {
		logs.Error("[Manager] failed to persist nonce for %s: %v", addr.Hex(), err)
	}
}

func (m *Manager) vaultRecord(vaultID uint64) types.VaultRecord {
	rec := types.VaultRecord{
		ID:             vaultID,
		Token:          m.vaultToken[vaultID].Hex(),
		DepositActive:  m.depositActive[vaultID],
		WithdrawActive: m.withdrawActive[vaultID],
		TradeStartTime: m.tradeStart[vaultID],
		Balance:        m.balances[vaultID].String(),
	}
	if recv, ok := m.royaltyReceiver[vaultID]; ok {
		rec.RoyaltyReceiver = recv.Hex()
		rec.RoyaltyFee = m.royaltyFee[vaultID]
	}
	return rec
}

// Restore 从持久化记录重建账本（进程重启后调用）。
// registry 提供每个 token 地址对应的合约实例。
func (m *Manager) Restore(
	recs []types.VaultRecord,
	nonces map[string]uint64,
	permitted []string,
	meta *types.LedgerMeta,
	registry map[common.Address]interfaces.TokenContract,
) error {
	if meta != nil {
		m.governor = common.HexToAddress(meta.Governor)
		if meta.Trustee != "" {
			m.trustee = common.HexToAddress(meta.Trustee)
		}
		m.totalVaults = meta.TotalVaults
	}
	for _, rec := range recs {
		tokenAddr := common.HexToAddress(rec.Token)
		tok, ok := registry[tokenAddr]
		if !ok {
			data, _ := json.Marshal(rec)
			logs.Warn("[Manager] restore: no contract registered for %s, skipping record %s", rec.Token, string(data))
			continue
		}
		bal, err := ParseBalance(rec.Balance)
		if err != nil {
			return err
		}
		v := vault.New(tok, m.addr, utils.VaultAddress(m.addr, rec.ID))
		m.tokens[tokenAddr] = tok
		m.vaults[rec.ID] = v
		m.vaultToken[rec.ID] = tokenAddr
		if len(m.tokenVaults[tokenAddr]) == 0 {
			m.tokenList = append(m.tokenList, tokenAddr)
		}
		m.tokenVaults[tokenAddr] = append(m.tokenVaults[tokenAddr], rec.ID)
		m.live.Add(uint32(rec.ID))
		m.depositActive[rec.ID] = rec.DepositActive
		m.withdrawActive[rec.ID] = rec.WithdrawActive
		m.tradeStart[rec.ID] = rec.TradeStartTime
		if rec.RoyaltyReceiver != "" {
			m.royaltyReceiver[rec.ID] = common.HexToAddress(rec.RoyaltyReceiver)
			m.royaltyFee[rec.ID] = rec.RoyaltyFee
		}
		m.balances[rec.ID] = bal
		agg := m.tokenBalances[tokenAddr]
		if agg == nil {
			agg = big.NewInt(0)
		}
		m.tokenBalances[tokenAddr] = new(big.Int).Add(agg, bal)
		if rec.ID >= m.totalVaults {
			m.totalVaults = rec.ID + 1
		}
	}
	for addr, n := range nonces {
		m.nonces[common.HexToAddress(addr)] = n
	}
	for _, addr := range permitted {
		m.permitted[common.HexToAddress(addr)] = true
	}
	logs.Info("[Manager] restored %d vaults, %d nonces", len(recs), len(nonces))
	return nil
}
