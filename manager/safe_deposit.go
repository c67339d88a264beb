// manager/safe_deposit.go
// 签名授权存款：depositor 离线签名授权，trustee 代为执行。
package manager

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vaultmanager/logs"
	"vaultmanager/types"
	"vaultmanager/utils"
)

// SafeDeposit 执行一笔由 depositor 离线签名授权的存款。
//
// caller 是直接调用方（trustee），origin 是交易的最初发起方。
// 规范消息 = keccak256(token || depositor || amount || nonces[depositor])，
// 再包 personal-message 前缀后签名。校验两件事：
//  1. 签名恢复出的地址必须等于 depositor；
//  2. origin 必须等于 depositor —— 防止第三方截获有效签名后代为提交。
//
// 校验通过后先推进 nonce（任何成功路径都不可跳过），再记账、再转账。
func (m *Manager) SafeDeposit(caller, origin, token common.Address, amount *big.Int, depositor common.Address, signature []byte) (uint64, error) {
	if err := m.requireOperator(caller); err != nil {
		return 0, err
	}
	vaultID, err := m.currentVaultID(token)
	if err != nil {
		return 0, err
	}
	if !m.depositActive[vaultID] {
		return 0, ErrDepositsFrozen
	}
	if err := m.requireTradeStarted(vaultID); err != nil {
		return 0, err
	}

	nonce := m.nonces[depositor]
	digest := utils.SignedDepositDigest(utils.DepositMessageHash(token, depositor, amount, nonce))
	signer, err := m.recoverCache.Recover(digest, signature)
	if err != nil || signer != depositor {
		return 0, ErrOnlyOriginDeposit
	}
	if origin != depositor {
		return 0, ErrOnlyOriginDeposit
	}

	// 重放保护：nonce 先行推进，同一签名不可能授权第二笔
	m.nonces[depositor] = nonce + 1
	m.persistNonce(depositor)

	if err := m.creditVault(vaultID, token, amount); err != nil {
		return 0, err
	}

	v := m.vaults[vaultID]
	if err := m.tokens[token].TransferFrom(m.addr, caller, v.Address(), amount); err != nil {
		// 转账失败回滚记账；nonce 保持已推进，签名仍视为已消耗
		m.revertCredit(vaultID, token, amount)
		logs.Warn("[Manager] safe deposit transfer failed for vault %d: %v", vaultID, err)
		return 0, err
	}

	// 事件只记成功的入金
	m.emit(types.EventDeposited, types.DepositedData{VaultID: vaultID, Token: token, Amount: new(big.Int).Set(amount)})
	logs.Info("[Manager] safe deposited %s of %s into vault %d for %s (nonce=%d)",
		amount.String(), token.Hex(), vaultID, depositor.Hex(), nonce)
	return vaultID, nil
}

// Nonces 查询 depositor 的当前 nonce
func (m *Manager) Nonces(depositor common.Address) uint64 {
	return m.nonces[depositor]
}
