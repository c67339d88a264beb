// keys/keys.go
// 统一的 Key 定义包，供 ledger 和 DB 模块共同使用
package keys

import (
	"fmt"
	"strings"
)

// ===================== 版本控制 =====================
// 设置全局 Key 版本前缀（例如 "v1" → 产出 "v1_<key>"）。
const KeyVersion = "v1"

// withVer 把版本号拼到最前面（保持下划线风格：v1_<...>）
func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// StripVersion 读取回退辅助：把带版本的键去掉版本前缀，便于双读回退。
func StripVersion(prefixed string) string {
	if KeyVersion == "" {
		return prefixed
	}
	p := KeyVersion + "_"
	return strings.TrimPrefix(prefixed, p)
}

// ===================== Vault 相关 =====================

// KeyVault vault 记录
// 例：v1_vault_00000000000000000042
func KeyVault(vaultID uint64) string {
	return withVer(fmt.Sprintf("vault_%020d", vaultID))
}

// NameOfKeyVault vault 记录的前缀，用于全量扫描
func NameOfKeyVault() string {
	return withVer("vault_")
}

// KeyVaultBalanceIndex 余额倒排索引（padded 为左零填充的倒排余额字符串）。
// 前缀不得与 vault 记录前缀重叠，否则记录扫描会把索引条目也捞出来。
// 例：v1_vaultidx_balance_<padded>_<vaultID>
func KeyVaultBalanceIndex(padded string, vaultID uint64) string {
	return withVer(fmt.Sprintf("vaultidx_balance_%s_%020d", padded, vaultID))
}

// NameOfKeyVaultBalanceIndex 余额索引前缀
func NameOfKeyVaultBalanceIndex() string {
	return withVer("vaultidx_balance_")
}

// ===================== 账户相关 =====================

// KeyNonce 存款授权 nonce
// 例：v1_nonce_<address>
func KeyNonce(address string) string {
	return withVer("nonce_" + address)
}

// NameOfKeyNonce nonce 前缀
func NameOfKeyNonce() string {
	return withVer("nonce_")
}

// KeyPermitted 许可名单成员
// 例：v1_permitted_<address>
func KeyPermitted(address string) string {
	return withVer("permitted_" + address)
}

// NameOfKeyPermitted 许可名单前缀
func NameOfKeyPermitted() string {
	return withVer("permitted_")
}

// ===================== 全局元数据 =====================

// KeyLedgerMeta 全局元数据（governor、trustee、totalVaults 整体一条 JSON）
func KeyLedgerMeta() string {
	return withVer("meta_ledger")
}

// ===================== 事件日志 =====================

// KeyEvent 事件日志条目（seq 由 badger.Sequence 发号）
// 例：v1_event_00000000000000000007
func KeyEvent(seq uint64) string {
	return withVer(fmt.Sprintf("event_%020d", seq))
}

// NameOfKeyEvent 事件日志前缀
func NameOfKeyEvent() string {
	return withVer("event_")
}
