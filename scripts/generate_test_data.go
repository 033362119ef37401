// 届出一覧のダミー Excel を生成するスクリプト。
// 実データを配布できないため、開発・負荷試験にはこれを使う。
//
//	go run scripts/generate_test_data.go -out data/filings -institutions 200
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

var prefectures = []string{"北海道", "宮城県", "東京都", "神奈川県", "愛知県", "大阪府", "広島県", "福岡県"}

var institutionSuffixes = []string{"病院", "クリニック", "医院", "診療所", "総合病院"}

var bedCategories = []string{"一般", "療養", "精神", "結核", "感染症"}

var filingCatalog = []struct {
	name   string
	symbol string
}{
	{"基本診療料", "基"},
	{"特掲診療料第1", "特1"},
	{"特掲診療料第2", "特2"},
	{"入院時食事療養費", "食"},
	{"救急医療管理加算", "救"},
	{"感染対策向上加算1", "感向1"},
	{"医療安全対策加算", "安"},
	{"データ提出加算", "デ"},
}

var headerRow = []string{
	"医療機関番号", "受理番号", "医療機関名称", "併設医療機関番号", "医療機関記号番号",
	"都道府県名", "医療機関所在地（郵便番号）", "医療機関所在地（住所）", "電話番号",
	"FAX番号", "種別", "区分", "病床数", "受理届出名称", "受理記号",
	"算定開始年月日", "備考名称", "備考内容",
}

func main() {
	outDir := flag.String("out", "data/filings", "出力ディレクトリ")
	institutions := flag.Int("institutions", 200, "生成する医療機関数")
	seed := flag.Int64("seed", 0, "乱数シード")
	flag.Parse()

	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("出力ディレクトリを作成できません: %v", err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// 実ファイルと同じく先頭3行は表題・注記、4行目がヘッダ
	mustSetRow(f, sheet, 1, []string{"届出受理医療機関名簿（テストデータ）"})
	mustSetRow(f, sheet, 2, []string{""})
	mustSetRow(f, sheet, 3, []string{""})
	mustSetRow(f, sheet, 4, headerRow)

	rowIdx := 5
	for i := 0; i < *institutions; i++ {
		number := fmt.Sprintf("%02d%08d", gofakeit.Number(1, 47), gofakeit.Number(1, 99999999))
		name := gofakeit.LastName() + gofakeit.RandomString(institutionSuffixes)
		pref := gofakeit.RandomString(prefectures)
		postal := fmt.Sprintf("〒%03d-%04d", gofakeit.Number(0, 999), gofakeit.Number(0, 9999))
		address := pref + gofakeit.City() + strconv.Itoa(gofakeit.Number(1, 9)) + "丁目"
		phone := fmt.Sprintf("0%d-%04d-%04d", gofakeit.Number(1, 9), gofakeit.Number(0, 9999), gofakeit.Number(0, 9999))
		beds := randomBedCountText()

		// 同一機関の届出は複数行に分かれ、2行目以降は所在地等が空欄のことがある。
		// 医療機関番号と名称は全行に入れる（名称単位の集約が前提とする形）
		filings := gofakeit.Number(1, 5)
		for j := 0; j < filings; j++ {
			filing := filingCatalog[gofakeit.Number(0, len(filingCatalog)-1)]
			row := []string{
				number,
				strconv.Itoa(gofakeit.Number(1, 99999)),
				name,
				"",
				fmt.Sprintf("%02d%04d", gofakeit.Number(1, 99), gofakeit.Number(1, 9999)),
				pref, postal, address, phone, phone,
				"病院",
				"医科",
				beds,
				filing.name,
				filing.symbol,
				randomEraDate(),
				"", "",
			}
			if j > 0 {
				for k := 3; k <= 12; k++ {
					row[k] = ""
				}
			}
			mustSetRow(f, sheet, rowIdx, row)
			rowIdx++
		}
	}

	outPath := filepath.Join(*outDir, "todokede_test.xlsx")
	if err := f.SaveAs(outPath); err != nil {
		log.Fatalf("保存に失敗しました: %v", err)
	}
	log.Printf("✓ %s に %d 行を出力しました", outPath, rowIdx-5)
}

// randomBedCountText 「一般　120／療養　40」形式の病床数セルを作る
func randomBedCountText() string {
	n := gofakeit.Number(0, 3)
	if n == 0 {
		// 区分なしの数値のみ、または空欄
		if gofakeit.Bool() {
			return strconv.Itoa(gofakeit.Number(1, 500))
		}
		return ""
	}
	text := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			text += "／"
		}
		text += bedCategories[gofakeit.Number(0, len(bedCategories)-1)] + "　" + strconv.Itoa(gofakeit.Number(1, 800))
	}
	return text
}

// randomEraDate 「令和 3年 4月 1日」形式の算定開始年月日を作る
func randomEraDate() string {
	year := gofakeit.Number(1, 7)
	yearText := strconv.Itoa(year)
	if year == 1 {
		yearText = "元"
	}
	return fmt.Sprintf("令和%s年%2d月%2d日", yearText, gofakeit.Number(1, 12), gofakeit.Number(1, 28))
}

func mustSetRow(f *excelize.File, sheet string, row int, values []string) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		log.Fatalf("セル座標の計算に失敗しました: %v", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		log.Fatalf("行の書き込みに失敗しました: %v", err)
	}
}
