package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kijunserver/server/services"
)

// SimilarityHandler 類似医療機関分析のエンドポイント
type SimilarityHandler struct {
	similarity  *services.SimilarityService
	topNDefault int
}

// NewSimilarityHandler 類似分析ハンドラを作成
func NewSimilarityHandler(similarity *services.SimilarityService, topNDefault int) *SimilarityHandler {
	return &SimilarityHandler{similarity: similarity, topNDefault: topNDefault}
}

// Compute GET /api/similarity
// 対象機関との届出集合の Jaccard 類似度によるランキング。
// クエリ: target（必須）、top_n、bed_type（繰り返し）、
// bed_count（繰り返し、区分:最小:最大）
func (h *SimilarityHandler) Compute(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		SendJSONError(c, http.StatusBadRequest, "target を指定してください")
		return
	}

	ranges, err := parseBedCountRanges(c.QueryArray("bed_count"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	results, err := h.similarity.Compute(target)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	filtered := results.
		FilterByBedTypes(c.QueryArray("bed_type")).
		FilterByBedCounts(ranges).
		TopN(queryInt(c, "top_n", h.topNDefault))

	SendJSONResponse(c, http.StatusOK, gin.H{
		"target":  target,
		"count":   len(filtered),
		"results": filtered,
	})
}

// CrossTab GET /api/crosstab
// 対象機関と類似上位機関の届出有無クロス集計。
// クエリ: target（必須）、top_n、unfiled_only
func (h *SimilarityHandler) CrossTab(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		SendJSONError(c, http.StatusBadRequest, "target を指定してください")
		return
	}

	crossTab, err := h.similarity.CrossTab(
		target,
		queryInt(c, "top_n", h.topNDefault),
		queryBool(c, "unfiled_only"),
	)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, crossTab)
}

// CacheStats GET /api/admin/similarity-cache
func (h *SimilarityHandler) CacheStats(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.similarity.CacheStats())
}

// ClearCache POST /api/admin/similarity-cache/clear
func (h *SimilarityHandler) ClearCache(c *gin.Context) {
	cleared := h.similarity.ClearCache()
	SendJSONResponse(c, http.StatusOK, gin.H{"cleared": cleared})
}
