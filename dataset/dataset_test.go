package dataset

import (
	"testing"
)

// testRecords 各テストで共有する小さな届出データ。
// 甲病院: 3届出・一般120床、乙クリニック: 2届出・一般19床、
// 丙病院: 2届出・療養45床、丁医院: 届出名称なし1行・病床記載なし。
func testRecords() []Record {
	return []Record{
		{InstitutionNumber: "0110001", AcceptanceNumber: "101", InstitutionName: "甲病院", Prefecture: "北海道",
			BedCount: BedCount{Labeled("一般"): 120}, FilingName: "基本診療料", FilingSymbol: "基"},
		{InstitutionNumber: "0110001", AcceptanceNumber: "101", InstitutionName: "甲病院",
			FilingName: "特掲診療料第1", FilingSymbol: "特1"},
		{InstitutionNumber: "0110001", AcceptanceNumber: "101", InstitutionName: "甲病院",
			FilingName: "特掲診療料第2", FilingSymbol: "特2"},
		{InstitutionNumber: "0110002", AcceptanceNumber: "102", InstitutionName: "乙クリニック", Prefecture: "北海道",
			BedCount: BedCount{Labeled("一般"): 19}, FilingName: "基本診療料", FilingSymbol: "基"},
		{InstitutionNumber: "0110002", AcceptanceNumber: "102", InstitutionName: "乙クリニック",
			FilingName: "特掲診療料第2", FilingSymbol: "特2"},
		{InstitutionNumber: "0110003", AcceptanceNumber: "103", InstitutionName: "丙病院", Prefecture: "宮城県",
			BedCount: BedCount{Labeled("療養"): 45}, FilingName: "基本診療料", FilingSymbol: "基"},
		{InstitutionNumber: "0110003", AcceptanceNumber: "103", InstitutionName: "丙病院",
			FilingName: "特掲診療料第3", FilingSymbol: "特3"},
		{InstitutionNumber: "0110004", AcceptanceNumber: "104", InstitutionName: "丁医院", Prefecture: "東京都"},
	}
}

func testDataset() *Dataset {
	return New(testRecords())
}

func TestFilterByInstitutionName(t *testing.T) {
	ds := testDataset()

	got := ds.FilterByInstitutionName("病院", false)
	if got.Len() != 5 {
		t.Errorf("partial match 病院: got %d records, want 5", got.Len())
	}

	// 空文字は無条件
	if ds.FilterByInstitutionName("", false).Len() != ds.Len() {
		t.Error("empty search term should keep all records")
	}

	// 元のデータセットは変更されない
	if ds.Len() != 8 {
		t.Errorf("original dataset mutated: %d records", ds.Len())
	}
}

func TestFilterByInstitutionNameCaseSensitivity(t *testing.T) {
	ds := New([]Record{
		{InstitutionNumber: "1", InstitutionName: "ABCクリニック"},
		{InstitutionNumber: "2", InstitutionName: "abcクリニック"},
	})

	if got := ds.FilterByInstitutionName("abc", false).Len(); got != 2 {
		t.Errorf("case-insensitive: got %d, want 2", got)
	}
	if got := ds.FilterByInstitutionName("abc", true).Len(); got != 1 {
		t.Errorf("case-sensitive: got %d, want 1", got)
	}
}

func TestFilterByExactInstitutionName(t *testing.T) {
	ds := testDataset()
	if got := ds.FilterByExactInstitutionName("甲病院").Len(); got != 3 {
		t.Errorf("exact match: got %d, want 3", got)
	}
	// 部分一致はしない
	if got := ds.FilterByExactInstitutionName("甲").Len(); got != 0 {
		t.Errorf("substring should not match exactly: got %d", got)
	}
}

func TestFilterByFacilityCriteria(t *testing.T) {
	ds := testDataset()

	// 名称と記号のどちらでも引ける（OR 条件）
	if got := ds.FilterByFacilityCriteria([]string{"基本診療料"}).Len(); got != 3 {
		t.Errorf("by name: got %d, want 3", got)
	}
	if got := ds.FilterByFacilityCriteria([]string{"特2"}).Len(); got != 2 {
		t.Errorf("by symbol: got %d, want 2", got)
	}
	if got := ds.FilterByFacilityCriteria([]string{"特掲診療料第1", "特3"}).Len(); got != 2 {
		t.Errorf("mixed criteria: got %d, want 2", got)
	}
	if got := ds.FilterByFacilityCriteria(nil).Len(); got != ds.Len() {
		t.Errorf("empty criteria should keep all: got %d", got)
	}
}

func TestAllBedTypes(t *testing.T) {
	got := testDataset().AllBedTypes()
	if len(got) != 2 || got[0] != "一般" || got[1] != "療養" {
		t.Errorf("AllBedTypes() = %v, want [一般 療養]", got)
	}
}

func TestFilterByBedTypes(t *testing.T) {
	ds := testDataset()

	// 機関単位で判定するため、病床記載のない継続行も一緒に残る
	got := ds.FilterByBedTypes([]string{"一般"})
	if got.Len() != 5 {
		t.Errorf("一般: got %d records, want 5", got.Len())
	}
	if got := ds.FilterByBedTypes([]string{"療養"}).Len(); got != 2 {
		t.Errorf("療養: got %d records, want 2", got)
	}
	if got := ds.FilterByBedTypes(nil).Len(); got != ds.Len() {
		t.Errorf("empty selection should keep all: got %d", got)
	}
}

func TestFilterByBedCounts(t *testing.T) {
	ds := testDataset()

	got := ds.FilterByBedCounts(map[string]BedCountRange{"一般": {Min: 20, Max: 500}})
	// 甲病院(120)は範囲内、乙クリニック(19)は範囲外。
	// 丙病院と丁医院は一般区分を持たないため条件を通過する（欠損は不合格ではない）
	if got.Len() != 6 {
		t.Errorf("got %d records, want 6", got.Len())
	}
	for _, r := range got.Records() {
		if r.InstitutionNumber == "0110002" {
			t.Error("乙クリニック (19 beds) should be excluded")
		}
	}

	// 複数条件は AND
	got = ds.FilterByBedCounts(map[string]BedCountRange{
		"一般": {Min: 0, Max: 200},
		"療養": {Min: 50, Max: 100},
	})
	for _, r := range got.Records() {
		if r.InstitutionNumber == "0110003" {
			t.Error("丙病院 (療養45) should be excluded by the 療養 range")
		}
	}
}

func TestBedCountMax(t *testing.T) {
	ds := testDataset()

	got := ds.BedCountMax([]string{"一般", "療養", "結核"})
	if got["一般"] != 120 {
		t.Errorf("max 一般 = %d, want 120", got["一般"])
	}
	if got["療養"] != 45 {
		t.Errorf("max 療養 = %d, want 45", got["療養"])
	}
	// 観測のない区分はキーごと存在しない
	if _, ok := got["結核"]; ok {
		t.Error("結核 has no observations and should be absent")
	}

	if got := ds.BedCountMax(nil); len(got) != 0 {
		t.Errorf("empty selection should return empty map, got %v", got)
	}
}

func TestFilingOptions(t *testing.T) {
	options := testDataset().FilingOptions()

	// 名称昇順、丁医院の届出名称なし行は含まれない
	want := []FilingOption{
		{Name: "基本診療料", Symbol: "基"},
		{Name: "特掲診療料第1", Symbol: "特1"},
		{Name: "特掲診療料第2", Symbol: "特2"},
		{Name: "特掲診療料第3", Symbol: "特3"},
	}
	if len(options) != len(want) {
		t.Fatalf("got %d options, want %d: %v", len(options), len(want), options)
	}
	for i := range want {
		if options[i] != want[i] {
			t.Errorf("options[%d] = %v, want %v", i, options[i], want[i])
		}
	}
}

func TestDistinctInstitutionCount(t *testing.T) {
	if got := testDataset().DistinctInstitutionCount(); got != 4 {
		t.Errorf("DistinctInstitutionCount() = %d, want 4", got)
	}
}
