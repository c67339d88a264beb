package utils

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

// RecoverCache 缓存 (digest, signature) → 签名者地址。
// 同一笔授权在预检和执行路径上会被重复验签，椭圆曲线恢复开销不小，缓存收益明显。
type RecoverCache struct {
	cache *lru.Cache
}

// NewRecoverCache 创建指定容量的恢复缓存
func NewRecoverCache(size int) (*RecoverCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &RecoverCache{cache: c}, nil
}

// Recover 带缓存的签名者恢复。恢复失败的结果不缓存。
func (rc *RecoverCache) Recover(digest, sig []byte) (common.Address, error) {
	key := hex.EncodeToString(digest) + "_" + hex.EncodeToString(sig)
	if v, ok := rc.cache.Get(key); ok {
		return v.(common.Address), nil
	}

	addr, err := RecoverSigner(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	rc.cache.Add(key, addr)
	return addr, nil
}

// Len 当前缓存条目数
func (rc *RecoverCache) Len() int {
	return rc.cache.Len()
}
