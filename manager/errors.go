package manager

import "errors"

// ========== 错误定义 ==========
// 错误文案与对外协议保持一致，调用方按字符串对账。

var (
	// 授权类
	ErrNotGovernor       = errors.New("Ownable: caller is not the owner")
	ErrNotTrustee        = errors.New("VaultManager: Not Trustee")
	ErrNotPermitted      = errors.New("VaultManager: Not Permitted")
	ErrOnlyOriginDeposit = errors.New("VaultManager: Only origin can deposit")

	// 校验类
	ErrZeroAddress    = errors.New("VaultManager: Zero address not allowed")
	ErrRoyaltyTooHigh = errors.New("VaultManager: Royalty cannot be more than 100%")
	ErrEOANotAllowed  = errors.New("VaultManager: EOA not allowed")

	// 未找到
	ErrVaultNotFound    = errors.New("VaultManager: Vault not found")
	ErrNoVaultsForToken = errors.New("VaultManager: No vaults for this token")

	// 状态冲突
	ErrDepositsFrozen    = errors.New("VaultManager: Deposits are frozen")
	ErrWithdrawalsFrozen = errors.New("VaultManager: Withdrawals are frozen")
	ErrTradeNotStarted   = errors.New("VaultManager: Trade not started yet")
	ErrTrusteeAlreadySet = errors.New("VaultManager: Trustee already set")
	ErrTrusteeNotSet     = errors.New("VaultManager: Trustee not set yet")
	ErrVaultNotEmpty     = errors.New("VaultManager: Vault not empty")

	// 余额不足
	ErrNotEnoughBalance = errors.New("VaultManager: Not enough balance")
)
