// db/ledger_store.go
// 账本写穿持久化：vault 记录、nonce、许可名单、全局元数据，
// 外加一个按余额倒排的索引，支持按余额有序扫描 vault。
package db

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/shopspring/decimal"

	"vaultmanager/interfaces"
	"vaultmanager/keys"
	"vaultmanager/logs"
	"vaultmanager/types"
)

// 余额索引的量级上限，倒排用
var maxIndexBalance, _ = decimal.NewFromString("1e40")

const balanceIndexPadWidth = 42

var _ interfaces.LedgerStore = (*LedgerStore)(nil)

// LedgerStore 把账本状态写穿到 badger。实现 interfaces.LedgerStore。
type LedgerStore struct {
	mgr interfaces.DBManager

	// 记住每个 vault 上一次落索引的余额，便于删旧插新
	mu          sync.Mutex
	lastBalance map[uint64]string
}

// NewLedgerStore 创建写穿存储
func NewLedgerStore(mgr interfaces.DBManager) *LedgerStore {
	return &LedgerStore{
		mgr:         mgr,
		lastBalance: make(map[uint64]string),
	}
}

// SaveVault 保存 vault 记录并维护余额索引
func (s *LedgerStore) SaveVault(rec types.VaultRecord) error {
	data, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	s.mgr.EnqueueSet(keys.KeyVault(rec.ID), string(data))
	s.updateBalanceIndex(rec.ID, rec.Balance)
	return nil
}

// DeleteVault 删除 vault 记录及其索引条目
func (s *LedgerStore) DeleteVault(vaultID uint64) error {
	s.mgr.EnqueueDelete(keys.KeyVault(vaultID))

	s.mu.Lock()
	old, ok := s.lastBalance[vaultID]
	delete(s.lastBalance, vaultID)
	s.mu.Unlock()
	if ok {
		s.mgr.EnqueueDelete(keys.KeyVaultBalanceIndex(old, vaultID))
	}
	return nil
}

// SaveNonce 保存地址的当前 nonce
func (s *LedgerStore) SaveNonce(address string, nonce uint64) error {
	s.mgr.EnqueueSet(keys.KeyNonce(address), strconv.FormatUint(nonce, 10))
	return nil
}

// SavePermitted 维护许可名单条目
func (s *LedgerStore) SavePermitted(address string, allowed bool) error {
	if allowed {
		s.mgr.EnqueueSet(keys.KeyPermitted(address), "")
	} else {
		s.mgr.EnqueueDelete(keys.KeyPermitted(address))
	}
	return nil
}

// SaveMeta 保存全局元数据
func (s *LedgerStore) SaveMeta(meta types.LedgerMeta) error {
	data, err := json.Marshal(&meta)
	if err != nil {
		return err
	}
	s.mgr.EnqueueSet(keys.KeyLedgerMeta(), string(data))
	return nil
}

// 用来删掉旧索引再插入新的
func (s *LedgerStore) updateBalanceIndex(vaultID uint64, balance string) {
	padded := buildBalanceIndexValue(balance)

	s.mu.Lock()
	old, ok := s.lastBalance[vaultID]
	s.lastBalance[vaultID] = padded
	s.mu.Unlock()

	if ok && old == padded {
		return
	}
	if ok {
		s.mgr.EnqueueDelete(keys.KeyVaultBalanceIndex(old, vaultID))
	}
	s.mgr.EnqueueSet(keys.KeyVaultBalanceIndex(padded, vaultID), "")
}

// buildBalanceIndexValue 把余额转为倒排左零填充字符串：
// inv = maxIndexBalance - balance，余额越大键越小，扫描即从大到小。
func buildBalanceIndexValue(balance string) string {
	bal, err := decimal.NewFromString(balance)
	if err != nil || bal.Sign() < 0 {
		bal = decimal.Zero
	}
	inv := maxIndexBalance.Sub(bal)
	if inv.Sign() < 0 {
		inv = decimal.Zero
	}
	invStr := inv.String()

	padNeeded := balanceIndexPadWidth - len(invStr)
	if padNeeded < 0 {
		padNeeded = 0
	}
	return strings.Repeat("0", padNeeded) + invStr
}

// ========== 恢复路径 ==========

// LoadVaultRecords 读出全部 vault 记录，按 id 升序（保证"当前 vault"次序）
func (s *LedgerStore) LoadVaultRecords() ([]types.VaultRecord, error) {
	raw, err := s.mgr.Scan(keys.NameOfKeyVault())
	if err != nil {
		return nil, err
	}
	recs := make([]types.VaultRecord, 0, len(raw))
	for k, v := range raw {
		var rec types.VaultRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			logs.Warn("[LedgerStore] skipping corrupt vault record %s: %v", k, err)
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })

	// 预热余额索引缓存
	s.mu.Lock()
	for _, rec := range recs {
		s.lastBalance[rec.ID] = buildBalanceIndexValue(rec.Balance)
	}
	s.mu.Unlock()
	return recs, nil
}

// LoadNonces 读出全部 nonce
func (s *LedgerStore) LoadNonces() (map[string]uint64, error) {
	raw, err := s.mgr.Scan(keys.NameOfKeyNonce())
	if err != nil {
		return nil, err
	}
	prefix := keys.NameOfKeyNonce()
	out := make(map[string]uint64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(k, prefix)] = n
	}
	return out, nil
}

// LoadPermitted 读出许可名单
func (s *LedgerStore) LoadPermitted() ([]string, error) {
	raw, err := s.mgr.Scan(keys.NameOfKeyPermitted())
	if err != nil {
		return nil, err
	}
	prefix := keys.NameOfKeyPermitted()
	out := make([]string, 0, len(raw))
	for k := range raw {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(out)
	return out, nil
}

// LoadMeta 读出全局元数据；从未写入时返回 nil
func (s *LedgerStore) LoadMeta() (*types.LedgerMeta, error) {
	val, err := s.mgr.Read(keys.KeyLedgerMeta())
	if err == ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta types.LedgerMeta
	if err := json.Unmarshal(val, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// RebuildLiveVaultIDs 扫描 vault 记录前缀，恢复存活 id 位图
func (s *LedgerStore) RebuildLiveVaultIDs() (*roaring.Bitmap, error) {
	raw, err := s.mgr.Scan(keys.NameOfKeyVault())
	if err != nil {
		return nil, err
	}
	prefix := keys.NameOfKeyVault()
	rebuilt := roaring.New()
	for k := range raw {
		idStr := strings.TrimPrefix(k, prefix)
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		rebuilt.Add(uint32(id))
	}
	logs.Info("[LedgerStore] rebuilt live vault bitmap with %d entries", rebuilt.GetCardinality())
	return rebuilt, nil
}

// ScanVaultIDsByBalanceDesc 按余额从大到小返回 vault id（余额索引顺序）
func (s *LedgerStore) ScanVaultIDsByBalanceDesc() ([]uint64, error) {
	raw, err := s.mgr.Scan(keys.NameOfKeyVaultBalanceIndex())
	if err != nil {
		return nil, err
	}
	idxKeys := make([]string, 0, len(raw))
	for k := range raw {
		idxKeys = append(idxKeys, k)
	}
	sort.Strings(idxKeys)

	prefix := keys.NameOfKeyVaultBalanceIndex()
	out := make([]uint64, 0, len(idxKeys))
	for _, k := range idxKeys {
		rest := strings.TrimPrefix(k, prefix)
		// 形如 <padded>_<vaultID>
		i := strings.LastIndex(rest, "_")
		if i < 0 {
			continue
		}
		id, err := strconv.ParseUint(rest[i+1:], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
