package services

import (
	"log/slog"
	"sync"
	"time"

	"kijunserver/database"
	"kijunserver/dataset"
	apperrors "kijunserver/server/errors"
)

// DatasetService スナップショットから読み込んだデータセットを保持し、
// 機関検索系の問い合わせを提供する。読み込み後のデータセットは不変として
// 扱い、全操作は派生した新しい構造を返す。
type DatasetService struct {
	db *database.SnapshotDB

	mu       sync.RWMutex
	ds       *dataset.Dataset
	loadedAt time.Time

	// スナップショット差し替え時に呼ばれるフック（キャッシュ破棄など）
	onReload []func()
}

// NewDatasetService スナップショット DB からサービスを作成
func NewDatasetService(db *database.SnapshotDB) *DatasetService {
	return &DatasetService{db: db}
}

// Load スナップショットをメモリに読み込む
func (s *DatasetService) Load() error {
	ds, err := s.db.LoadDataset()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ds = ds
	s.loadedAt = time.Now()
	s.mu.Unlock()

	slog.Info("Dataset loaded",
		"records", ds.Len(),
		"institutions", ds.DistinctInstitutionCount(),
		"snapshot", s.db.Path(),
	)

	for _, hook := range s.onReload {
		hook()
	}
	return nil
}

// OnReload 再読み込み時のフックを登録する（起動時のみ呼ぶこと）
func (s *DatasetService) OnReload(hook func()) {
	s.onReload = append(s.onReload, hook)
}

// Dataset 現在のデータセットを返す。未読み込みならエラー。
func (s *DatasetService) Dataset() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, apperrors.NewServiceUnavailableError("データセットが読み込まれていません", nil)
	}
	return s.ds, nil
}

// LoadedAt 最後に読み込んだ時刻
func (s *DatasetService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// SearchInstitutions 医療機関名称の部分一致で機関を検索し、名称単位に
// 集約して返す（届出数付き、名称昇順）。
func (s *DatasetService) SearchInstitutions(searchTerm string, caseSensitive bool) ([]dataset.Institution, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.FilterByInstitutionName(searchTerm, caseSensitive).AggregateByInstitutionName(), nil
}

// FilingDetail 機関詳細に添える届出1件分
type FilingDetail struct {
	FilingName   string     `json:"filing_name"`
	FilingSymbol string     `json:"filing_symbol"`
	BillingStart *time.Time `json:"billing_start,omitempty"`
}

// InstitutionDetail 機関の集約情報と届出一覧
type InstitutionDetail struct {
	Institution dataset.Institution `json:"institution"`
	Filings     []FilingDetail      `json:"filings"`
}

// GetInstitutionDetail 名称完全一致で機関詳細を返す。見つからなければ 404。
func (s *DatasetService) GetInstitutionDetail(name string) (*InstitutionDetail, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	matched := ds.FilterByExactInstitutionName(name)
	if matched.Len() == 0 {
		return nil, apperrors.NewNotFoundError("指定された医療機関が見つかりません", nil)
	}

	institutions := matched.AggregateByInstitutionName()
	detail := &InstitutionDetail{Institution: institutions[0]}
	for _, r := range matched.Records() {
		if r.FilingName == "" {
			continue
		}
		detail.Filings = append(detail.Filings, FilingDetail{
			FilingName:   r.FilingName,
			FilingSymbol: r.FilingSymbol,
			BillingStart: r.BillingStart,
		})
	}
	return detail, nil
}

// FilingOptions 届出名称・記号の候補一覧
func (s *DatasetService) FilingOptions() ([]dataset.FilingOption, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.FilingOptions(), nil
}

// SearchByFilingCriteria 指定した施設基準（名称または記号）を届け出ている
// 機関を名称単位に集約して返す
func (s *DatasetService) SearchByFilingCriteria(criteria []string) ([]dataset.Institution, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return []dataset.Institution{}, nil
	}
	return ds.FilterByFacilityCriteria(criteria).AggregateByInstitutionName(), nil
}

// BedTypes データセットに出現する病床区分の一覧
func (s *DatasetService) BedTypes() ([]string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.AllBedTypes(), nil
}

// BedCountMax 指定区分ごとの最大病床数（レンジ UI の上限用）
func (s *DatasetService) BedCountMax(bedTypes []string) (map[string]int, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.BedCountMax(bedTypes), nil
}
