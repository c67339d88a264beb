package types

// VaultRecord 是 vault 的持久化形态。
// 余额用十进制字符串存储，避免 JSON 对大整数的精度问题。
type VaultRecord struct {
	ID             uint64 `json:"id"`
	Token          string `json:"token"`
	DepositActive  bool   `json:"deposit_active"`
	WithdrawActive bool   `json:"withdraw_active"`
	TradeStartTime uint64 `json:"trade_start_time"`
	RoyaltyReceiver string `json:"royalty_receiver,omitempty"`
	RoyaltyFee     uint64 `json:"royalty_fee,omitempty"`
	Balance        string `json:"balance"`
}

// LedgerMeta 全局元数据的持久化形态
type LedgerMeta struct {
	Governor    string `json:"governor"`
	Trustee     string `json:"trustee,omitempty"`
	TotalVaults uint64 `json:"total_vaults"`
}

// EventRecord 事件日志条目
type EventRecord struct {
	ID        string      `json:"id"` // murmur 哈希，便于对账去重
	EventType EventType   `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}
