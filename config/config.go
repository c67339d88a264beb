// config/config.go
package config

import (
	"fmt"
	"time"
)

// Config 主配置结构
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// BadgerDB配置
	ValueLogFileSize int64 // 64 << 20 (64MB)

	// 写队列配置
	WriteQueueSize int           // 10000
	MaxBatchSize   int           // 100
	FlushInterval  time.Duration // 200 * time.Millisecond

	// 自增发号器配置
	SequenceBandwidth uint64 // 1000
}

// LedgerConfig 账本配置
type LedgerConfig struct {
	// 签名恢复缓存大小（safeDeposit 高频重复验签场景）
	RecoverCacheSize int // 4096
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			ValueLogFileSize:  64 << 20,
			WriteQueueSize:    10000,
			MaxBatchSize:      100,
			FlushInterval:     200 * time.Millisecond,
			SequenceBandwidth: 1000,
		},
		Ledger: LedgerConfig{
			RecoverCacheSize: 4096,
		},
	}
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	if c.Database.WriteQueueSize <= 0 {
		return fmt.Errorf("config: WriteQueueSize must be positive, got %d", c.Database.WriteQueueSize)
	}
	if c.Database.MaxBatchSize <= 0 {
		return fmt.Errorf("config: MaxBatchSize must be positive, got %d", c.Database.MaxBatchSize)
	}
	if c.Database.FlushInterval <= 0 {
		return fmt.Errorf("config: FlushInterval must be positive, got %v", c.Database.FlushInterval)
	}
	if c.Ledger.RecoverCacheSize <= 0 {
		return fmt.Errorf("config: RecoverCacheSize must be positive, got %d", c.Ledger.RecoverCacheSize)
	}
	return nil
}
