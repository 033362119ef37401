package dataset

import (
	"sort"
	"strings"
)

// Institution 集約後の医療機関エンティティ。1グループ（複合キーまたは
// 名称グループ）につき1件。
type Institution struct {
	InstitutionNumber string            `json:"institution_number"`
	AcceptanceNumber  string            `json:"acceptance_number,omitempty"`
	InstitutionName   string            `json:"institution_name"`
	CoLocatedNumber   string            `json:"co_located_number,omitempty"`
	SymbolNumber      string            `json:"symbol_number"`
	Prefecture        string            `json:"prefecture"`
	PostalCode        string            `json:"postal_code"`
	Address           string            `json:"address"`
	Phone             string            `json:"phone"`
	Fax               string            `json:"fax"`
	Category          string            `json:"category"`
	BedCount          BedCount          `json:"bed_count"`
	Remarks           map[string]string `json:"remarks,omitempty"`
	FilingCount       int               `json:"filing_count"`
}

// reducePolicy カラムごとの縮約ポリシー
type reducePolicy int

const (
	// reduceFirst グループ先頭行の値を採用
	reduceFirst reducePolicy = iota
	// reduceFirstNonEmpty 最初の非空値を採用、全て空なら先頭行の値
	reduceFirstNonEmpty
)

// columnPolicy 文字列カラム1本分の縮約定義。どのカラムをどう畳むかを
// 表として監査できるようにする。
type columnPolicy struct {
	policy reducePolicy
	get    func(*Record) string
	set    func(*Institution, string)
}

// descriptiveColumns 記述系カラムの縮約ポリシー表。
// BedCount（最初の非空値）と備考（マージ）は別扱い。
var descriptiveColumns = []columnPolicy{
	{reduceFirst, func(r *Record) string { return r.InstitutionName }, func(a *Institution, v string) { a.InstitutionName = v }},
	{reduceFirst, func(r *Record) string { return r.CoLocatedNumber }, func(a *Institution, v string) { a.CoLocatedNumber = v }},
	{reduceFirst, func(r *Record) string { return r.SymbolNumber }, func(a *Institution, v string) { a.SymbolNumber = v }},
	{reduceFirst, func(r *Record) string { return r.Prefecture }, func(a *Institution, v string) { a.Prefecture = v }},
	{reduceFirst, func(r *Record) string { return r.PostalCode }, func(a *Institution, v string) { a.PostalCode = v }},
	{reduceFirst, func(r *Record) string { return r.Address }, func(a *Institution, v string) { a.Address = v }},
	{reduceFirst, func(r *Record) string { return r.Phone }, func(a *Institution, v string) { a.Phone = v }},
	{reduceFirst, func(r *Record) string { return r.Fax }, func(a *Institution, v string) { a.Fax = v }},
	{reduceFirst, func(r *Record) string { return r.Category }, func(a *Institution, v string) { a.Category = v }},
}

// reduceColumn ポリシーに従ってグループの代表値を決める
func reduceColumn(group []Record, p columnPolicy) string {
	switch p.policy {
	case reduceFirstNonEmpty:
		for i := range group {
			if v := p.get(&group[i]); strings.TrimSpace(v) != "" {
				return v
			}
		}
		return p.get(&group[0])
	default:
		return p.get(&group[0])
	}
}

// mergeRemarks グループ内の全行を走査し、備考名称→備考内容のマップを作る。
// 空の備考名称は捨て、備考内容が空なら空文字を入れる。名称が重複したら
// 後の行が勝つ。
func mergeRemarks(group []Record) map[string]string {
	remarks := make(map[string]string)
	for i := range group {
		header := strings.TrimSpace(group[i].RemarkHeader)
		if header == "" {
			continue
		}
		remarks[header] = strings.TrimSpace(group[i].RemarkData)
	}
	if len(remarks) == 0 {
		return nil
	}
	return remarks
}

// representativeBedCount 最初の非空 BedCount、全て空なら先頭行の値
func representativeBedCount(group []Record) BedCount {
	for i := range group {
		if !group[i].BedCount.IsEmpty() {
			return group[i].BedCount
		}
	}
	return group[0].BedCount
}

// reduceGroup 1グループを Institution に畳む
func reduceGroup(group []Record) Institution {
	inst := Institution{
		InstitutionNumber: group[0].InstitutionNumber,
		AcceptanceNumber:  group[0].AcceptanceNumber,
		FilingCount:       len(group),
		BedCount:          representativeBedCount(group),
		Remarks:           mergeRemarks(group),
	}
	for _, p := range descriptiveColumns {
		p.set(&inst, reduceColumn(group, p))
	}
	return inst
}

// AggregateByInstitution (医療機関番号, 受理番号) の複合キーでグループ化し、
// 機関ごとに1件へ畳む。結果は初出行順。
func (ds *Dataset) AggregateByInstitution() []Institution {
	type key struct{ number, acceptance string }
	groups := make(map[key][]Record)
	order := make([]key, 0)
	for i := range ds.records {
		k := key{ds.records[i].InstitutionNumber, ds.records[i].AcceptanceNumber}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], ds.records[i])
	}
	institutions := make([]Institution, 0, len(order))
	for _, k := range order {
		institutions = append(institutions, reduceGroup(groups[k]))
	}
	return institutions
}

// AggregateByInstitutionName 医療機関名称でグループ化し、名称ごとに1件へ
// 畳む。届出数は名称グループの行数。結果は名称昇順。
func (ds *Dataset) AggregateByInstitutionName() []Institution {
	groups := make(map[string][]Record)
	names := make([]string, 0)
	for i := range ds.records {
		name := ds.records[i].InstitutionName
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], ds.records[i])
	}
	sort.Strings(names)
	institutions := make([]Institution, 0, len(names))
	for _, name := range names {
		inst := reduceGroup(groups[name])
		// 名称グループでは受理番号は代表値として意味を持たない
		inst.AcceptanceNumber = ""
		institutions = append(institutions, inst)
	}
	return institutions
}
