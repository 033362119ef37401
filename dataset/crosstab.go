package dataset

import (
	"sort"
)

// CrossTabRow クロス集計の1行。届出名称ごとに、各機関カラム
// （対象機関が先頭、以降は類似度ランキング順）の届出有無を持つ。
type CrossTabRow struct {
	FilingName   string `json:"filing_name"`
	FilingSymbol string `json:"filing_symbol"`
	Filed        []bool `json:"filed"`
}

// CrossTab 届出名称×医療機関の届出有無マトリクス。行は名称昇順。
type CrossTab struct {
	TargetName   string        `json:"target_name"`
	Institutions []string      `json:"institutions"`
	Rows         []CrossTabRow `json:"rows"`
}

// BuildCrossTab 類似度結果の上位 topN 件と対象機関の届出集合を合成して
// クロス集計を作る。対象名が見つからない場合と候補が空の場合は空を返す。
func BuildCrossTab(results SimilarityResults, ds *Dataset, targetName string, topN int) CrossTab {
	top := results.TopN(topN)
	if len(top) == 0 {
		return CrossTab{TargetName: targetName}
	}

	target := ds.FilterByExactInstitutionName(targetName)
	if target.Len() == 0 {
		return CrossTab{TargetName: targetName}
	}
	targetNumber := target.Records()[0].InstitutionNumber

	filingsByNumber := ds.institutionFilings()
	numberByName := ds.institutionNumberByName()

	// 受理届出名称→受理記号（初出の値）。データ上は 1:1 だが、
	// 崩れていても最初の値を採用するだけで失敗にはしない。
	symbols := make(map[string]string)
	for i := range ds.records {
		r := &ds.records[i]
		if r.FilingName == "" {
			continue
		}
		if _, ok := symbols[r.FilingName]; !ok {
			symbols[r.FilingName] = r.FilingSymbol
		}
	}

	// 対象機関と上位候補の届出集合の和集合が行になる
	allFilings := make(map[string]bool)
	for name := range filingsByNumber[targetNumber] {
		allFilings[name] = true
	}
	candidateSets := make([]map[string]bool, len(top))
	for i := range top {
		number, ok := numberByName[top[i].InstitutionName]
		if !ok {
			// 名称→番号の対応が取れない候補は全セル false になる
			candidateSets[i] = nil
			continue
		}
		candidateSets[i] = filingsByNumber[number]
		for name := range candidateSets[i] {
			allFilings[name] = true
		}
	}
	if len(allFilings) == 0 {
		return CrossTab{TargetName: targetName}
	}

	filingNames := make([]string, 0, len(allFilings))
	for name := range allFilings {
		filingNames = append(filingNames, name)
	}
	sort.Strings(filingNames)

	institutions := make([]string, 0, len(top)+1)
	institutions = append(institutions, targetName)
	for i := range top {
		institutions = append(institutions, top[i].InstitutionName)
	}

	targetSet := filingsByNumber[targetNumber]
	rows := make([]CrossTabRow, 0, len(filingNames))
	for _, filingName := range filingNames {
		filed := make([]bool, 0, len(institutions))
		filed = append(filed, targetSet[filingName])
		for i := range top {
			filed = append(filed, candidateSets[i][filingName])
		}
		rows = append(rows, CrossTabRow{
			FilingName:   filingName,
			FilingSymbol: symbols[filingName],
			Filed:        filed,
		})
	}

	return CrossTab{
		TargetName:   targetName,
		Institutions: institutions,
		Rows:         rows,
	}
}

// UnfiledByTarget 対象機関が届け出ていない施設基準の行だけを残す
// （ギャップ分析ビュー用）。カラム構成は変えない。
func (ct CrossTab) UnfiledByTarget() CrossTab {
	rows := make([]CrossTabRow, 0, len(ct.Rows))
	for i := range ct.Rows {
		if len(ct.Rows[i].Filed) > 0 && !ct.Rows[i].Filed[0] {
			rows = append(rows, ct.Rows[i])
		}
	}
	return CrossTab{
		TargetName:   ct.TargetName,
		Institutions: ct.Institutions,
		Rows:         rows,
	}
}
