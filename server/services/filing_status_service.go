package services

import (
	"kijunserver/dataset"
)

// FilingStatusService 届出状況一覧（施設基準別の届出機関数・割合）の集計
type FilingStatusService struct {
	datasets *DatasetService
}

// NewFilingStatusService 届出状況サービスを作成
func NewFilingStatusService(datasets *DatasetService) *FilingStatusService {
	return &FilingStatusService{datasets: datasets}
}

// StatusFilter 集計前後に適用する絞り込み条件
type StatusFilter struct {
	// 集計前: 病床条件で機関サブセットを絞る（割合の分母が変わる）
	BedTypes  []string
	BedCounts map[string]dataset.BedCountRange

	// 集計後: 施設基準の許可リスト（名称または記号の完全一致、OR）
	Criteria []string
}

// Compute フィルタ済みサブセットの届出状況を集計する。
// 割合の分母はフィルタ後の機関数。機関ゼロのサブセットは空の結果になる。
func (s *FilingStatusService) Compute(filter StatusFilter) (dataset.FilingStatus, error) {
	ds, err := s.datasets.Dataset()
	if err != nil {
		return dataset.FilingStatus{}, err
	}

	subset := ds.FilterByBedTypes(filter.BedTypes).FilterByBedCounts(filter.BedCounts)
	status := dataset.ComputeFilingStatus(subset)
	return status.FilterByFacilityCriteria(filter.Criteria), nil
}
