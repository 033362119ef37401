package dataset

import (
	"math"
	"sort"
)

// FilingStatusEntry (受理届出名称, 受理記号) ごとの届出状況。
// Percentage の分母はフィルタ後のサブセットの機関数であり、
// データセット全体の機関数ではない。
type FilingStatusEntry struct {
	FilingName       string  `json:"filing_name"`
	FilingSymbol     string  `json:"filing_symbol"`
	InstitutionCount int     `json:"institution_count"`
	FilingCount      int     `json:"filing_count"`
	Percentage       float64 `json:"percentage"`
}

// FilingStatus 届出状況一覧（名称昇順、名称が同じなら記号昇順）
type FilingStatus struct {
	TotalInstitutions int                 `json:"total_institutions"`
	Entries           []FilingStatusEntry `json:"entries"`
}

// ComputeFilingStatus サブセット内の届出状況を集計する。
// 機関数ゼロのサブセットでは割合が定義できないため空を返す
// （ゼロ除算を伝播させない）。
func ComputeFilingStatus(ds *Dataset) FilingStatus {
	total := ds.DistinctInstitutionCount()
	if total == 0 {
		return FilingStatus{}
	}

	type key struct{ name, symbol string }
	institutions := make(map[key]map[string]bool)
	occurrences := make(map[key]int)
	keys := make([]key, 0)
	for i := range ds.records {
		r := &ds.records[i]
		if r.FilingName == "" {
			continue
		}
		k := key{r.FilingName, r.FilingSymbol}
		if _, ok := institutions[k]; !ok {
			institutions[k] = make(map[string]bool)
			keys = append(keys, k)
		}
		institutions[k][r.InstitutionNumber] = true
		occurrences[k]++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].symbol < keys[j].symbol
	})

	entries := make([]FilingStatusEntry, 0, len(keys))
	for _, k := range keys {
		count := len(institutions[k])
		pct := math.Round(float64(count)/float64(total)*100*100) / 100
		entries = append(entries, FilingStatusEntry{
			FilingName:       k.name,
			FilingSymbol:     k.symbol,
			InstitutionCount: count,
			FilingCount:      occurrences[k],
			Percentage:       pct,
		})
	}
	return FilingStatus{TotalInstitutions: total, Entries: entries}
}

// FilterByFacilityCriteria 名称または記号の完全一致（OR 条件）で集計結果を
// 絞り込む。分母（TotalInstitutions）は変えない。空リストは無条件。
func (fs FilingStatus) FilterByFacilityCriteria(criteria []string) FilingStatus {
	if len(criteria) == 0 {
		return fs
	}
	wanted := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		wanted[c] = true
	}
	entries := make([]FilingStatusEntry, 0, len(fs.Entries))
	for i := range fs.Entries {
		if wanted[fs.Entries[i].FilingName] || wanted[fs.Entries[i].FilingSymbol] {
			entries = append(entries, fs.Entries[i])
		}
	}
	return FilingStatus{TotalInstitutions: fs.TotalInstitutions, Entries: entries}
}
