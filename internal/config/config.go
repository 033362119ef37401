package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config サーバ設定。環境変数から読み込む。
type Config struct {
	// サーバ
	Port string

	// スナップショット DB とデータディレクトリ
	SnapshotDatabasePath string
	FilingsDataDir       string

	// Connection pooling
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// ログ
	LogLevel string

	// レートリミット（リクエスト/秒とバースト）
	RateLimitRPS   float64
	RateLimitBurst int

	// 類似機関分析
	SimilarityTopNDefault int
	SimilarityCacheSize   int
}

// LoadConfig 環境変数から設定を読み込む
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("SERVER_PORT", "9876"),

		SnapshotDatabasePath: getEnv("SNAPSHOT_DATABASE_PATH", "data/snapshot.db"),
		FilingsDataDir:       getEnv("FILINGS_DATA_DIR", "data/filings"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		SimilarityTopNDefault: getEnvInt("SIMILARITY_TOP_N_DEFAULT", 20),
		SimilarityCacheSize:   getEnvInt("SIMILARITY_CACHE_SIZE", 256),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// getEnv 環境変数を読み、未設定ならデフォルト値を返す
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 整数の環境変数を読む。不正値はデフォルトに落とす。
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat 実数の環境変数を読む。不正値はデフォルトに落とす。
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration time.Duration の環境変数を読む。不正値はデフォルトに落とす。
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
