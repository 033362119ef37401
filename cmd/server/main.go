package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kijunserver/database"
	"kijunserver/internal/config"
	"kijunserver/server"
)

// slogLevel LOG_LEVEL 設定値を slog のレベルに写す
func slogLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 施設基準届出分析サーバを起動します...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})))

	dbConfig := database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	db, err := database.NewSnapshotDBWithConfig(cfg.SnapshotDatabasePath, dbConfig)
	if err != nil {
		log.Fatalf("スナップショット DB を開けません: %v", err)
	}
	defer db.Close()
	log.Printf("スナップショット DB: %s", cfg.SnapshotDatabasePath)

	srv := server.New(cfg, db)

	// スナップショット未投入でも起動は続行する（API 側は 503 を返す）
	if err := srv.LoadDataset(); err != nil {
		log.Printf("⚠ データセットを読み込めませんでした: %v", err)
		log.Printf("  create-snapshot で取り込み後、POST /api/admin/reload を呼んでください")
	}

	httpSrv := srv.HTTPServer()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("✗ サーバの起動に失敗しました: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════")
	log.Printf("✓ サーバを起動しました（ポート %s）", cfg.Port)
	log.Printf("✓ API: http://localhost:%s/api", cfg.Port)
	log.Println("  停止するには Ctrl+C を押してください")
	log.Println("═══════════════════════════════════════════════════════")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("⏹  終了シグナルを受信しました。サーバを停止します...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("✗ サーバ停止中にエラー: %v", err)
	} else {
		log.Println("✓ サーバを停止しました")
	}
}
