package importer

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"kijunserver/dataset"
)

// 届出一覧 Excel のカラム名。様式はデータ部の前に3行のヘッダ行を持つ。
const (
	colInstitutionNumber = "医療機関番号"
	colAcceptanceNumber  = "受理番号"
	colInstitutionName   = "医療機関名称"
	colCoLocatedNumber   = "併設医療機関番号"
	colSymbolNumber      = "医療機関記号番号"
	colPrefecture        = "都道府県名"
	colPostalCode        = "医療機関所在地（郵便番号）"
	colAddress           = "医療機関所在地（住所）"
	colPhone             = "電話番号"
	colFax               = "FAX番号"
	colCategory          = "種別"
	colClassification    = "区分"
	colBedCount          = "病床数"
	colFilingName        = "受理届出名称"
	colFilingSymbol      = "受理記号"
	colBillingStart      = "算定開始年月日"
	colRemarkHeader      = "備考名称"
	colRemarkData        = "備考内容"
)

// skipHeaderRows データ部の前にある説明行の数（様式固定）
const skipHeaderRows = 3

// LoadDirectory ディレクトリ配下の *.xlsx を再帰的に読み込み、全ファイル・
// 全シートを1つのデータセットに連結する。いずれかのシートで構造上の必須
// カラムが欠けている場合、または非空の算定開始年月日が解析できない場合は
// 取り込み全体を失敗させる（部分的な成功でデータセットを汚さない）。
func LoadDirectory(dirPath string) (*dataset.Dataset, error) {
	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(strings.ToLower(name), ".xlsx") && !strings.HasPrefix(name, "~$") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("データディレクトリを走査できません: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("xlsx ファイルが見つかりません: %s", dirPath)
	}
	sort.Strings(files)

	var records []dataset.Record
	for _, path := range files {
		fileRecords, err := LoadWorkbook(path)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
		log.Printf("Loaded %s: %d rows (total %d)", filepath.Base(path), len(fileRecords), len(records))
	}
	return dataset.New(records), nil
}

// LoadWorkbook 1つの Excel ファイルの全シートを読み込む
func LoadWorkbook(path string) ([]dataset.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("Excel ファイルを開けません %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("シートがありません: %s", path)
	}

	var records []dataset.Record
	for _, sheet := range sheets {
		sheetRecords, err := parseSheet(f, filepath.Base(path), sheet)
		if err != nil {
			return nil, err
		}
		records = append(records, sheetRecords...)
	}
	return records, nil
}

// parseSheet 1シート分を解析する。ヘッダ行は skipHeaderRows 行の直後。
func parseSheet(f *excelize.File, fileName, sheet string) ([]dataset.Record, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("シートを読み込めません %s %s: %w", fileName, sheet, err)
	}
	if len(rows) <= skipHeaderRows {
		return nil, fmt.Errorf("ヘッダ行がありません: %s %s", fileName, sheet)
	}

	header := make(map[string]int)
	for i, cell := range rows[skipHeaderRows] {
		header[strings.TrimSpace(cell)] = i
	}
	// 様式変更の検知。区分カラムの不在はこのシートの取り込みを打ち切る
	if _, ok := header[colClassification]; !ok {
		return nil, fmt.Errorf("区分カラムが見つかりません: %s %s", fileName, sheet)
	}

	cell := func(row []string, name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]dataset.Record, 0, len(rows)-skipHeaderRows-1)
	for rowIdx := skipHeaderRows + 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isEmptyRow(row) {
			continue
		}

		r := dataset.Record{
			InstitutionNumber: cell(row, colInstitutionNumber),
			AcceptanceNumber:  cell(row, colAcceptanceNumber),
			InstitutionName:   cell(row, colInstitutionName),
			CoLocatedNumber:   cell(row, colCoLocatedNumber),
			SymbolNumber:      cell(row, colSymbolNumber),
			Prefecture:        cell(row, colPrefecture),
			PostalCode:        cell(row, colPostalCode),
			Address:           cell(row, colAddress),
			Phone:             cell(row, colPhone),
			Fax:               cell(row, colFax),
			Category:          cell(row, colCategory),
			Classification:    cell(row, colClassification),
			BedCountRaw:       cell(row, colBedCount),
			FilingName:        cell(row, colFilingName),
			FilingSymbol:      cell(row, colFilingSymbol),
			RemarkHeader:      cell(row, colRemarkHeader),
			RemarkData:        cell(row, colRemarkData),
			BillingStartRaw:   cell(row, colBillingStart),
		}

		r.BedCount = ParseBedCount(r.BedCountRaw)

		billingStart, err := ParseEraDate(r.BillingStartRaw)
		if err != nil {
			// 非空の算定開始年月日が読めないのは様式変更のシグナル。
			// 行を黙って落とすと下流の分析が壊れるため致命扱いにする。
			return nil, fmt.Errorf("%s %s 行%d: %w", fileName, sheet, rowIdx+1, err)
		}
		r.BillingStart = billingStart

		records = append(records, r)
	}
	return records, nil
}

// isEmptyRow 全セルが空白の行かどうか
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
