package services

import (
	"sync"

	"kijunserver/dataset"
	apperrors "kijunserver/server/errors"
)

// SimilarityService 類似医療機関分析のサービス。計算本体は純粋関数
// （同じデータセットと対象名なら常に同じ結果）なので、引数の正規化
// キーによる明示的なメモ化を重ねる。キャッシュはスナップショットの
// 差し替えで無効化される。
type SimilarityService struct {
	datasets *DatasetService

	cacheMutex sync.RWMutex
	cache      map[string]dataset.SimilarityResults
	cacheOrder []string
	cacheSize  int
}

// NewSimilarityService 類似分析サービスを作成する。cacheSize が 0 なら
// メモ化しない。
func NewSimilarityService(datasets *DatasetService, cacheSize int) *SimilarityService {
	s := &SimilarityService{
		datasets:  datasets,
		cache:     make(map[string]dataset.SimilarityResults),
		cacheSize: cacheSize,
	}
	datasets.OnReload(func() { s.ClearCache() })
	return s
}

// cacheKey 引数の正規化キー。現状は対象名のみが計算の入力。
func cacheKey(targetName string) string {
	return "target=" + targetName
}

// Compute 対象機関名から類似機関ランキング（全件）を返す。
// 対象が存在しない・届出がない場合は空の結果（エラーではない）。
func (s *SimilarityService) Compute(targetName string) (dataset.SimilarityResults, error) {
	if targetName == "" {
		return nil, apperrors.NewValidationError("対象医療機関名を指定してください", nil)
	}

	key := cacheKey(targetName)
	s.cacheMutex.RLock()
	if cached, ok := s.cache[key]; ok {
		s.cacheMutex.RUnlock()
		return cached, nil
	}
	s.cacheMutex.RUnlock()

	ds, err := s.datasets.Dataset()
	if err != nil {
		return nil, err
	}
	results := dataset.ComputeSimilarity(ds, targetName)

	if s.cacheSize > 0 {
		s.cacheMutex.Lock()
		if _, ok := s.cache[key]; !ok {
			// 先入れ先出しで上限を守る
			if len(s.cacheOrder) >= s.cacheSize {
				oldest := s.cacheOrder[0]
				s.cacheOrder = s.cacheOrder[1:]
				delete(s.cache, oldest)
			}
			s.cache[key] = results
			s.cacheOrder = append(s.cacheOrder, key)
		}
		s.cacheMutex.Unlock()
	}
	return results, nil
}

// CrossTab 類似度上位 topN 件と対象機関のクロス集計を返す。
// unfiledOnly が真なら対象機関が未届出の行だけに絞る。
func (s *SimilarityService) CrossTab(targetName string, topN int, unfiledOnly bool) (dataset.CrossTab, error) {
	results, err := s.Compute(targetName)
	if err != nil {
		return dataset.CrossTab{}, err
	}
	ds, err := s.datasets.Dataset()
	if err != nil {
		return dataset.CrossTab{}, err
	}

	crossTab := dataset.BuildCrossTab(results, ds, targetName, topN)
	if unfiledOnly {
		crossTab = crossTab.UnfiledByTarget()
	}
	return crossTab, nil
}

// ClearCache メモ化結果を破棄し、破棄した件数を返す
func (s *SimilarityService) ClearCache() int {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	size := len(s.cache)
	s.cache = make(map[string]dataset.SimilarityResults)
	s.cacheOrder = nil
	return size
}

// CacheStats キャッシュの統計
func (s *SimilarityService) CacheStats() map[string]interface{} {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	return map[string]interface{}{
		"cache_size":    len(s.cache),
		"cache_limit":   s.cacheSize,
		"cache_enabled": s.cacheSize > 0,
	}
}
