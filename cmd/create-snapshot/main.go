// create-snapshot 厚生局の Excel 届出一覧を取り込み、
// 検索用スナップショット DB を作り直すバッチコマンド。
package main

import (
	"flag"
	"log"

	"kijunserver/database"
	"kijunserver/importer"
)

func main() {
	inputDir := flag.String("input-dir", "data/filings", "届出 Excel (.xlsx) を置いたディレクトリ")
	output := flag.String("output", "data/snapshot.db", "出力するスナップショット DB のパス")
	flag.Parse()

	log.Printf("取り込み開始: %s", *inputDir)

	ds, err := importer.LoadDirectory(*inputDir)
	if err != nil {
		// 取り込みエラーは途中結果を残さずここで打ち切る
		log.Fatalf("✗ 取り込みに失敗しました: %v", err)
	}
	log.Printf("✓ %d 行を読み込みました", ds.Len())

	db, err := database.NewSnapshotDB(*output)
	if err != nil {
		log.Fatalf("✗ スナップショット DB を開けません %s: %v", *output, err)
	}
	defer db.Close()

	if err := db.SaveDataset(ds); err != nil {
		log.Fatalf("✗ スナップショットの保存に失敗しました: %v", err)
	}

	count, err := db.RecordCount()
	if err != nil {
		log.Fatalf("✗ 保存結果の確認に失敗しました: %v", err)
	}
	log.Printf("✓ スナップショットを作成しました: %s (%d 行)", *output, count)
}
