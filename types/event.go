package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ============================================
// 事件系统
// ============================================

type EventType string

const (
	EventVaultCreated      EventType = "vault.created"
	EventVaultStatusUpdate EventType = "vault.status_update"
	EventVaultRoyaltySet   EventType = "vault.royalty_set"
	EventVaultDeleted      EventType = "vault.deleted"
	EventDeposited         EventType = "vault.deposited"
	EventWithdrawn         EventType = "vault.withdrawn"
	EventTrusteeUpdated    EventType = "trustee.updated"
	EventGovernorshipMoved EventType = "governor.transferred"
	EventPermittedUpdated  EventType = "permitted.updated"
)

type BaseEvent struct {
	EventType EventType
	EventData interface{}
}

func (e BaseEvent) Type() EventType   { return e.EventType }
func (e BaseEvent) Data() interface{} { return e.EventData }

// ============================================
// 事件数据载荷
// ============================================

type VaultCreatedData struct {
	VaultID uint64
	Token   common.Address
}

type VaultStatusUpdateData struct {
	VaultID        uint64
	DepositActive  bool
	WithdrawActive bool
}

type VaultRoyaltySetData struct {
	VaultID      uint64
	Token        common.Address
	Receiver     common.Address
	FeeNumerator uint64
}

type VaultDeletedData struct {
	VaultID uint64
	Token   common.Address
}

type DepositedData struct {
	VaultID uint64
	Token   common.Address
	Amount  *big.Int
}

type WithdrawnData struct {
	VaultID uint64
	Token   common.Address
	Amount  *big.Int
}

type TrusteeUpdatedData struct {
	Trustee common.Address
}

type GovernorshipMovedData struct {
	OldGovernor common.Address
	NewGovernor common.Address
}

type PermittedUpdatedData struct {
	Address common.Address
	Allowed bool
}
