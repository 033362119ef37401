package importer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook テスト用の届出一覧 Excel を組み立てる。
// rows はデータ行。様式どおり先頭3行の説明行と4行目のヘッダを付ける。
func writeWorkbook(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	setRow := func(rowIdx int, values []string) {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	setRow(1, []string{"届出受理医療機関名簿"})
	setRow(4, header)
	for i, row := range rows {
		setRow(5+i, row)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

var testHeader = []string{
	colInstitutionNumber, colInstitutionName, colPrefecture, colClassification,
	colBedCount, colFilingName, colFilingSymbol, colBillingStart,
	colRemarkHeader, colRemarkData,
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "todokede.xlsx"), testHeader, [][]string{
		{"0110001", "第一病院", "北海道", "医科", "一般　　120", "基本診療料", "基", "令和 3年 4月 1日", "", ""},
		{"0110001", "", "", "", "", "特掲診療料第1", "特1", "平成29年 9月 1日", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
		{"0110002", "中央クリニック", "北海道", "医科", "19", "基本診療料", "基", "令和元年12月 1日", "届出補足", "経過措置あり"},
	})

	ds, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	records := ds.Records()
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (empty row skipped)", len(records))
	}

	first := records[0]
	if first.InstitutionNumber != "0110001" || first.InstitutionName != "第一病院" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if got, ok := first.BedCount.Get("一般"); !ok || got != 120 {
		t.Errorf("bed count 一般 = %d (%v), want 120", got, ok)
	}
	want := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	if first.BillingStart == nil || !first.BillingStart.Equal(want) {
		t.Errorf("billing start = %v, want %v", first.BillingStart, want)
	}

	// 継続行は機関情報が空欄のまま保持される（集約は別レイヤの責務）
	second := records[1]
	if second.InstitutionName != "" || second.FilingName != "特掲診療料第1" {
		t.Errorf("unexpected continuation record: %+v", second)
	}

	third := records[2]
	if third.RemarkHeader != "届出補足" || third.RemarkData != "経過措置あり" {
		t.Errorf("unexpected remarks: %+v", third)
	}
}

func TestLoadDirectoryNoFiles(t *testing.T) {
	if _, err := LoadDirectory(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without xlsx files")
	}
}

func TestLoadDirectorySkipsExcelLockFiles(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "todokede.xlsx"), testHeader, [][]string{
		{"0110001", "第一病院", "北海道", "医科", "", "基本診療料", "基", "", "", ""},
	})
	// Excel が開いている間に残すロックファイルは対象外
	writeWorkbook(t, filepath.Join(dir, "~$todokede.xlsx"), testHeader, [][]string{
		{"9999999", "ゴミ", "北海道", "医科", "", "基本診療料", "基", "", "", ""},
	})

	ds, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("got %d records, want 1", ds.Len())
	}
}

func TestLoadWorkbookMissingClassificationColumn(t *testing.T) {
	dir := t.TempDir()
	header := []string{colInstitutionNumber, colInstitutionName, colFilingName}
	path := filepath.Join(dir, "old_format.xlsx")
	writeWorkbook(t, path, header, [][]string{
		{"0110001", "第一病院", "基本診療料"},
	})

	_, err := LoadWorkbook(path)
	if err == nil {
		t.Fatal("expected error for workbook without 区分 column")
	}
	if !strings.Contains(err.Error(), "区分") {
		t.Errorf("error should name the missing column, got: %v", err)
	}
	if !strings.Contains(err.Error(), "old_format.xlsx") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestLoadWorkbookUnparseableBillingStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad_date.xlsx")
	writeWorkbook(t, path, testHeader, [][]string{
		{"0110001", "第一病院", "北海道", "医科", "", "基本診療料", "基", "2021-04-01", "", ""},
	})

	_, err := LoadWorkbook(path)
	if !errors.Is(err, ErrUnparseableDate) {
		t.Fatalf("expected ErrUnparseableDate, got: %v", err)
	}
	// 調査に必要なファイル名と行番号が入っていること
	if !strings.Contains(err.Error(), "bad_date.xlsx") || !strings.Contains(err.Error(), "行5") {
		t.Errorf("error should identify file and row, got: %v", err)
	}
}

func TestLoadWorkbookEmptyBillingStartAllowed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_date.xlsx")
	writeWorkbook(t, path, testHeader, [][]string{
		{"0110001", "第一病院", "北海道", "医科", "", "基本診療料", "基", "", "", ""},
	})

	records, err := LoadWorkbook(path)
	if err != nil {
		t.Fatalf("LoadWorkbook: %v", err)
	}
	if len(records) != 1 || records[0].BillingStart != nil {
		t.Errorf("empty billing start should load as nil, got: %+v", records)
	}
}
