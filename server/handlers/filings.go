package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kijunserver/server/services"
)

// FilingHandler 届出（施設基準）系のエンドポイント
type FilingHandler struct {
	datasets     *services.DatasetService
	filingStatus *services.FilingStatusService
}

// NewFilingHandler 届出ハンドラを作成
func NewFilingHandler(datasets *services.DatasetService, filingStatus *services.FilingStatusService) *FilingHandler {
	return &FilingHandler{datasets: datasets, filingStatus: filingStatus}
}

// Options GET /api/filings
// 受理届出名称・受理記号の候補一覧（名称昇順）
func (h *FilingHandler) Options(c *gin.Context) {
	options, err := h.datasets.FilingOptions()
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"count":   len(options),
		"filings": options,
	})
}

// Search GET /api/filing-search
// 指定した施設基準を届け出ている機関の一覧。
// クエリ: criteria（繰り返し、名称または記号の完全一致）
func (h *FilingHandler) Search(c *gin.Context) {
	criteria := c.QueryArray("criteria")
	if len(criteria) == 0 {
		SendJSONError(c, http.StatusBadRequest, "criteria を1つ以上指定してください")
		return
	}
	institutions, err := h.datasets.SearchByFilingCriteria(criteria)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"count":        len(institutions),
		"institutions": institutions,
	})
}

// Status GET /api/filing-status
// 施設基準別の届出状況（届出機関数と割合）。
// クエリ: criteria（繰り返し）、bed_type（繰り返し）、
// bed_count（繰り返し、区分:最小:最大）
func (h *FilingHandler) Status(c *gin.Context) {
	ranges, err := parseBedCountRanges(c.QueryArray("bed_count"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	status, err := h.filingStatus.Compute(services.StatusFilter{
		BedTypes:  c.QueryArray("bed_type"),
		BedCounts: ranges,
		Criteria:  c.QueryArray("criteria"),
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, status)
}
