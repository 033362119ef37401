package config

import (
	"fmt"
	"strconv"
)

// Validate 設定値の整合性を検査する
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("SERVER_PORT が空です")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("SERVER_PORT が不正です: %s", c.Port)
	}
	if c.SnapshotDatabasePath == "" {
		return fmt.Errorf("SNAPSHOT_DATABASE_PATH が空です")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS は1以上が必要です: %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS が不正です: %d", c.MaxIdleConns)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS は正の値が必要です: %f", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST は1以上が必要です: %d", c.RateLimitBurst)
	}
	if c.SimilarityTopNDefault < 1 {
		return fmt.Errorf("SIMILARITY_TOP_N_DEFAULT は1以上が必要です: %d", c.SimilarityTopNDefault)
	}
	if c.SimilarityCacheSize < 0 {
		return fmt.Errorf("SIMILARITY_CACHE_SIZE は0以上が必要です: %d", c.SimilarityCacheSize)
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL が不正です: %s", c.LogLevel)
	}
	return nil
}
