package dataset

import (
	"sort"
	"strings"
	"time"
)

// Record 受理届出1件分の生レコード。(医療機関番号, 受理番号) が一意キーで、
// 同一機関の届出が複数行に展開されている（集約前の形）。
type Record struct {
	InstitutionNumber string     // 医療機関番号
	AcceptanceNumber  string     // 受理番号
	InstitutionName   string     // 医療機関名称
	CoLocatedNumber   string     // 併設医療機関番号
	SymbolNumber      string     // 医療機関記号番号
	Prefecture        string     // 都道府県名
	PostalCode        string     // 医療機関所在地（郵便番号）
	Address           string     // 医療機関所在地（住所）
	Phone             string     // 電話番号
	Fax               string     // FAX番号
	Category          string     // 種別
	Classification    string     // 区分
	BedCountRaw       string     // 病床数（原文）
	BedCount          BedCount   // 病床数（構造化済み）
	FilingName        string     // 受理届出名称
	FilingSymbol      string     // 受理記号
	RemarkHeader      string     // 備考名称
	RemarkData        string     // 備考内容
	BillingStartRaw   string     // 算定開始年月日（原文、和暦）
	BillingStart      *time.Time // 算定開始年月日（解析済み）
}

// Dataset 正規化済みレコードの読み取り専用コレクション。
// フィルタ系メソッドはすべて新しい Dataset を返し、元を変更しない。
type Dataset struct {
	records []Record
}

// New レコード列から Dataset を作成
func New(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Records 保持するレコード列を返す（呼び出し側は変更しないこと）
func (ds *Dataset) Records() []Record {
	return ds.records
}

// Len レコード件数
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// filter 述語を満たすレコードだけの新しい Dataset を返す
func (ds *Dataset) filter(keep func(*Record) bool) *Dataset {
	out := make([]Record, 0, len(ds.records))
	for i := range ds.records {
		if keep(&ds.records[i]) {
			out = append(out, ds.records[i])
		}
	}
	return &Dataset{records: out}
}

// FilterByInstitutionName 医療機関名称の部分一致で絞り込む。
// 空文字は無条件（全件のコピーを返す）。
func (ds *Dataset) FilterByInstitutionName(searchTerm string, caseSensitive bool) *Dataset {
	if searchTerm == "" {
		return ds.filter(func(*Record) bool { return true })
	}
	if !caseSensitive {
		lower := strings.ToLower(searchTerm)
		return ds.filter(func(r *Record) bool {
			return strings.Contains(strings.ToLower(r.InstitutionName), lower)
		})
	}
	return ds.filter(func(r *Record) bool {
		return strings.Contains(r.InstitutionName, searchTerm)
	})
}

// FilterByExactInstitutionName 医療機関名称の完全一致で絞り込む
func (ds *Dataset) FilterByExactInstitutionName(name string) *Dataset {
	if name == "" {
		return ds.filter(func(*Record) bool { return true })
	}
	return ds.filter(func(r *Record) bool {
		return r.InstitutionName == name
	})
}

// FilterByFacilityCriteria 施設基準（受理届出名称または受理記号の完全一致、
// OR 条件）で絞り込む。空リストは無条件。
func (ds *Dataset) FilterByFacilityCriteria(criteria []string) *Dataset {
	if len(criteria) == 0 {
		return ds.filter(func(*Record) bool { return true })
	}
	wanted := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		wanted[c] = true
	}
	return ds.filter(func(r *Record) bool {
		return wanted[r.FilingName] || wanted[r.FilingSymbol]
	})
}

// institutionBedTypes 医療機関番号ごとに、全レコードの病床区分ラベルを
// 集約した集合を返す
func (ds *Dataset) institutionBedTypes() map[string]map[string]bool {
	byNumber := make(map[string]map[string]bool)
	for i := range ds.records {
		r := &ds.records[i]
		set := byNumber[r.InstitutionNumber]
		if set == nil {
			set = make(map[string]bool)
			byNumber[r.InstitutionNumber] = set
		}
		for _, label := range r.BedCount.Labels() {
			set[label] = true
		}
	}
	return byNumber
}

// firstBedCountPerInstitution 医療機関番号ごとの代表 BedCount
// （最初に出現した行の値）を返す
func (ds *Dataset) firstBedCountPerInstitution() map[string]BedCount {
	byNumber := make(map[string]BedCount)
	for i := range ds.records {
		r := &ds.records[i]
		if _, ok := byNumber[r.InstitutionNumber]; !ok {
			byNumber[r.InstitutionNumber] = r.BedCount
		}
	}
	return byNumber
}

// AllBedTypes データセット全体に出現する病床区分ラベルをソート済みで返す
func (ds *Dataset) AllBedTypes() []string {
	seen := make(map[string]bool)
	for i := range ds.records {
		for _, label := range ds.records[i].BedCount.Labels() {
			seen[label] = true
		}
	}
	types := make([]string, 0, len(seen))
	for label := range seen {
		types = append(types, label)
	}
	sort.Strings(types)
	return types
}

// FilterByBedTypes 指定した病床区分を1つ以上持つ医療機関のレコードだけを
// 残す。機関単位（医療機関番号でグループ化）で判定する。空リストは無条件。
func (ds *Dataset) FilterByBedTypes(selected []string) *Dataset {
	if len(selected) == 0 {
		return ds.filter(func(*Record) bool { return true })
	}
	byNumber := ds.institutionBedTypes()
	keep := make(map[string]bool, len(byNumber))
	for number, types := range byNumber {
		for _, want := range selected {
			if types[want] {
				keep[number] = true
				break
			}
		}
	}
	return ds.filter(func(r *Record) bool {
		return keep[r.InstitutionNumber]
	})
}

// BedCountRange 病床数レンジフィルタの下限・上限（両端含む）
type BedCountRange struct {
	Min int
	Max int
}

// passesBedCountFilters 代表 BedCount がレンジ条件をすべて満たすか判定する。
// 対象区分を持たない機関はその条件を通過扱いにする（欠損は不合格ではない）。
func passesBedCountFilters(bc BedCount, filters map[string]BedCountRange) bool {
	for bedType, r := range filters {
		n, ok := bc.Get(bedType)
		if !ok {
			continue
		}
		if n < r.Min || n > r.Max {
			return false
		}
	}
	return true
}

// FilterByBedCounts 病床数レンジで絞り込む。全条件 AND。空マップは無条件。
func (ds *Dataset) FilterByBedCounts(filters map[string]BedCountRange) *Dataset {
	if len(filters) == 0 {
		return ds.filter(func(*Record) bool { return true })
	}
	byNumber := ds.firstBedCountPerInstitution()
	keep := make(map[string]bool, len(byNumber))
	for number, bc := range byNumber {
		if passesBedCountFilters(bc, filters) {
			keep[number] = true
		}
	}
	return ds.filter(func(r *Record) bool {
		return keep[r.InstitutionNumber]
	})
}

// BedCountMax 指定区分ごとに、全機関の代表 BedCount に現れる最大病床数を
// 返す。観測が1件もない区分は結果に含めない（レンジ UI の上限設定用）。
func (ds *Dataset) BedCountMax(selected []string) map[string]int {
	if len(selected) == 0 {
		return map[string]int{}
	}
	maxima := make(map[string]int)
	for _, bc := range ds.firstBedCountPerInstitution() {
		for _, bedType := range selected {
			n, ok := bc.Get(bedType)
			if !ok {
				continue
			}
			if cur, seen := maxima[bedType]; !seen || n > cur {
				maxima[bedType] = n
			}
		}
	}
	return maxima
}

// FilingOption 受理届出名称と受理記号の組（検索 UI の候補一覧用）
type FilingOption struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// FilingOptions データセットに出現する届出名称・記号の組を名称昇順で返す。
// 記号は名称ごとに最初に出現した値を採用する（データ上は 1:1）。
func (ds *Dataset) FilingOptions() []FilingOption {
	symbols := make(map[string]string)
	names := make([]string, 0)
	for i := range ds.records {
		r := &ds.records[i]
		if r.FilingName == "" {
			continue
		}
		if _, ok := symbols[r.FilingName]; !ok {
			symbols[r.FilingName] = r.FilingSymbol
			names = append(names, r.FilingName)
		}
	}
	sort.Strings(names)
	options := make([]FilingOption, 0, len(names))
	for _, name := range names {
		options = append(options, FilingOption{Name: name, Symbol: symbols[name]})
	}
	return options
}

// institutionFilings 医療機関番号ごとの届出名称集合（非空のみ、重複除去）
func (ds *Dataset) institutionFilings() map[string]map[string]bool {
	byNumber := make(map[string]map[string]bool)
	for i := range ds.records {
		r := &ds.records[i]
		set := byNumber[r.InstitutionNumber]
		if set == nil {
			set = make(map[string]bool)
			byNumber[r.InstitutionNumber] = set
		}
		if r.FilingName != "" {
			set[r.FilingName] = true
		}
	}
	return byNumber
}

// institutionNumbersInOrder 医療機関番号を初出行順で返す
func (ds *Dataset) institutionNumbersInOrder() []string {
	seen := make(map[string]bool)
	numbers := make([]string, 0)
	for i := range ds.records {
		n := ds.records[i].InstitutionNumber
		if !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// institutionNames 医療機関番号→名称（初出の値）
func (ds *Dataset) institutionNames() map[string]string {
	byNumber := make(map[string]string)
	for i := range ds.records {
		r := &ds.records[i]
		if _, ok := byNumber[r.InstitutionNumber]; !ok {
			byNumber[r.InstitutionNumber] = r.InstitutionName
		}
	}
	return byNumber
}

// institutionNumberByName 医療機関名称→番号（初出の値）
func (ds *Dataset) institutionNumberByName() map[string]string {
	byName := make(map[string]string)
	for i := range ds.records {
		r := &ds.records[i]
		if _, ok := byName[r.InstitutionName]; !ok {
			byName[r.InstitutionName] = r.InstitutionNumber
		}
	}
	return byName
}

// DistinctInstitutionCount 医療機関番号ベースの機関数
func (ds *Dataset) DistinctInstitutionCount() int {
	seen := make(map[string]bool)
	for i := range ds.records {
		seen[ds.records[i].InstitutionNumber] = true
	}
	return len(seen)
}
