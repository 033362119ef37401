package dataset

import (
	"sort"
)

// SimilarityResult 類似機関1件分の結果。対象機関自身と届出ゼロの機関は
// 結果に含まれない。overlap + target-only = |対象機関の届出集合|、
// overlap + candidate-only = |候補機関の届出集合| が常に成り立つ。
type SimilarityResult struct {
	InstitutionName string   `json:"institution_name"`
	BedTypes        []string `json:"bed_types"`
	BedCount        BedCount `json:"bed_count"`
	Score           float64  `json:"score"`
	Overlap         int      `json:"overlap"`
	TargetOnly      int      `json:"target_only"`
	CandidateOnly   int      `json:"candidate_only"`
}

// SimilarityResults 類似度降順の結果列。同点は元データの初出順を保つ。
type SimilarityResults []SimilarityResult

// jaccardIndex 2つの集合の Jaccard 係数。両方空なら 1.0、和集合が空なら
// 0.0 を返す。呼び出し元のガードにより前者は実際には通らないが、入力に
// 対する頑健性のため残す。
func jaccardIndex(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// ComputeSimilarity 対象機関名から類似機関ランキングを計算する。
// 対象名が見つからない場合と対象の届出集合が空の場合は空の結果を返す
// （検索文脈では正常系として扱う）。
func ComputeSimilarity(ds *Dataset, targetName string) SimilarityResults {
	target := ds.FilterByExactInstitutionName(targetName)
	if target.Len() == 0 {
		return SimilarityResults{}
	}
	targetNumber := target.Records()[0].InstitutionNumber

	filings := ds.institutionFilings()
	names := ds.institutionNames()
	bedCounts := ds.firstBedCountPerInstitution()

	targetFilings := filings[targetNumber]
	if len(targetFilings) == 0 {
		return SimilarityResults{}
	}

	// マップ順に依存しないよう、初出行順で候補を走査する。
	// これが同点時の安定ソート順になる。
	results := make(SimilarityResults, 0)
	for _, number := range ds.institutionNumbersInOrder() {
		if number == targetNumber {
			continue
		}
		candidateFilings := filings[number]
		if len(candidateFilings) == 0 {
			continue
		}

		overlap := 0
		for name := range targetFilings {
			if candidateFilings[name] {
				overlap++
			}
		}

		bedCount := bedCounts[number].Clone()
		results = append(results, SimilarityResult{
			InstitutionName: names[number],
			BedTypes:        bedCount.Labels(),
			BedCount:        bedCount,
			Score:           jaccardIndex(targetFilings, candidateFilings),
			Overlap:         overlap,
			TargetOnly:      len(targetFilings) - overlap,
			CandidateOnly:   len(candidateFilings) - overlap,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// TopN 上位 n 件を返す（n が件数を超える場合は全件）
func (sr SimilarityResults) TopN(n int) SimilarityResults {
	if n < 0 {
		n = 0
	}
	if n > len(sr) {
		n = len(sr)
	}
	return sr[:n]
}

// AllBedTypes 結果に出現する病床区分ラベルをソート済みで返す
func (sr SimilarityResults) AllBedTypes() []string {
	seen := make(map[string]bool)
	for i := range sr {
		for _, label := range sr[i].BedTypes {
			if label != "" {
				seen[label] = true
			}
		}
	}
	types := make([]string, 0, len(seen))
	for label := range seen {
		types = append(types, label)
	}
	sort.Strings(types)
	return types
}

// FilterByBedTypes 指定した病床区分を1つ以上持つ結果だけを残す。
// 空リストは無条件。
func (sr SimilarityResults) FilterByBedTypes(selected []string) SimilarityResults {
	if len(selected) == 0 {
		return sr
	}
	wanted := make(map[string]bool, len(selected))
	for _, label := range selected {
		wanted[label] = true
	}
	out := make(SimilarityResults, 0, len(sr))
	for i := range sr {
		for _, label := range sr[i].BedTypes {
			if wanted[label] {
				out = append(out, sr[i])
				break
			}
		}
	}
	return out
}

// FilterByBedCounts 病床数レンジで絞り込む。結果には番号カラムがないため
// 機関名称単位（初出の BedCount）で判定する。空マップは無条件。
func (sr SimilarityResults) FilterByBedCounts(filters map[string]BedCountRange) SimilarityResults {
	if len(filters) == 0 {
		return sr
	}
	firstByName := make(map[string]BedCount)
	for i := range sr {
		if _, ok := firstByName[sr[i].InstitutionName]; !ok {
			firstByName[sr[i].InstitutionName] = sr[i].BedCount
		}
	}
	out := make(SimilarityResults, 0, len(sr))
	for i := range sr {
		if passesBedCountFilters(firstByName[sr[i].InstitutionName], filters) {
			out = append(out, sr[i])
		}
	}
	return out
}

// BedCountMax 指定区分ごとの最大病床数（機関名称単位で重複除去）
func (sr SimilarityResults) BedCountMax(selected []string) map[string]int {
	if len(selected) == 0 {
		return map[string]int{}
	}
	firstByName := make(map[string]BedCount)
	order := make([]string, 0)
	for i := range sr {
		if _, ok := firstByName[sr[i].InstitutionName]; !ok {
			firstByName[sr[i].InstitutionName] = sr[i].BedCount
			order = append(order, sr[i].InstitutionName)
		}
	}
	maxima := make(map[string]int)
	for _, name := range order {
		for _, bedType := range selected {
			n, ok := firstByName[name].Get(bedType)
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
