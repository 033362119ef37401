// fetch-filings 厚生局の届出一覧ページから Excel ファイルを
// まとめてダウンロードするコマンド。create-snapshot の前段で使う。
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"kijunserver/fetcher"
)

func main() {
	pageURL := flag.String("url", "", "届出一覧ページの URL（必須）")
	destDir := flag.String("dest", "data/filings", "ダウンロード先ディレクトリ")
	rps := flag.Float64("rps", 1.0, "リクエスト/秒の上限")
	flag.Parse()

	if *pageURL == "" {
		log.Fatal("-url を指定してください")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetcher.NewClient(*rps)
	saved, err := client.DownloadAll(ctx, *pageURL, *destDir)
	if err != nil {
		log.Fatalf("✗ ダウンロードに失敗しました: %v", err)
	}
	log.Printf("✓ %d ファイルを保存しました: %s", len(saved), *destDir)
}
