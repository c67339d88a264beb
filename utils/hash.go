package utils

import (
	"encoding/hex"

	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/sha3"
)

// Keccak256 计算以太坊风格的 keccak256 哈希
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// MurmurHash 使用Murmur3哈希算法
func MurmurHash(data []byte) []byte {
	h := murmur3.New64()
	// murmur3 的 Write 永远不返回错误
	_, _ = h.Write(data)
	sum64 := h.Sum64()
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(sum64 >> (8 * i))
	}
	return b
}

// EventID 为事件日志生成紧凑的去重 ID（16 个 hex 字符）
func EventID(payload []byte) string {
	return hex.EncodeToString(MurmurHash(payload))
}
