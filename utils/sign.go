// utils/sign.go
// safeDeposit 链下授权签名：消息哈希构造、签名与恢复。
// 哈希构造是版本化的固定编码，客户端必须逐字节复现才能产生有效授权。
package utils

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// SignatureSize 签名长度：r(32) || s(32) || v(1)
	SignatureSize = 65

	// personalPrefix 以太坊 personal message 前缀（32 字节摘要）
	personalPrefix = "\x19Ethereum Signed Message:\n32"
)

var (
	// ErrInvalidSignatureLen 签名长度不是 65 字节
	ErrInvalidSignatureLen = errors.New("invalid signature length")
	// ErrInvalidRecoveryID v 不在 {0,1,27,28} 内
	ErrInvalidRecoveryID = errors.New("invalid signature recovery id")
)

// DepositMessageHash 计算 safeDeposit 的规范消息哈希：
// keccak256(token[20] || depositor[20] || amount[32] || nonce[32])
func DepositMessageHash(token, depositor common.Address, amount *big.Int, nonce uint64) []byte {
	var amountBuf [32]byte
	if amount != nil {
		amount.FillBytes(amountBuf[:])
	}
	var nonceBuf [32]byte
	binary.BigEndian.PutUint64(nonceBuf[24:], nonce)

	return Keccak256(token.Bytes(), depositor.Bytes(), amountBuf[:], nonceBuf[:])
}

// SignedDepositDigest 把消息哈希包上 personal-message 前缀，得到实际被签名的摘要
func SignedDepositDigest(messageHash []byte) []byte {
	return Keccak256([]byte(personalPrefix), messageHash)
}

// SignDigest 用私钥对 32 字节摘要签名，返回 r||s||v（v 为 27/28，与以太坊钱包一致）
func SignDigest(priv *secp256k1.PrivateKey, digest []byte) []byte {
	compact := ecdsa.SignCompact(priv, digest, false)
	// SignCompact 返回 header||r||s，header = 27 + recid
	sig := make([]byte, SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// RecoverSigner 从摘要和 r||s||v 签名恢复签名者地址
func RecoverSigner(digest, sig []byte) (common.Address, error) {
	if len(sig) != SignatureSize {
		return common.Address{}, ErrInvalidSignatureLen
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, ErrInvalidRecoveryID
	}

	compact := make([]byte, SignatureSize)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return common.Address{}, err
	}
	return PubKeyAddress(pub), nil
}

// PubKeyAddress 公钥对应的以太坊地址：keccak256(pubkey)[12:]
func PubKeyAddress(pub *secp256k1.PublicKey) common.Address {
	uncompressed := pub.SerializeUncompressed()
	return common.BytesToAddress(Keccak256(uncompressed[1:])[12:])
}

// PrivKeyAddress 私钥对应的以太坊地址
func PrivKeyAddress(priv *secp256k1.PrivateKey) common.Address {
	return PubKeyAddress(priv.PubKey())
}

// VaultAddress 为 (manager, vaultID) 派生确定性的 vault 地址
func VaultAddress(manager common.Address, vaultID uint64) common.Address {
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], vaultID)
	return common.BytesToAddress(Keccak256(manager.Bytes(), idBuf[:])[12:])
}
