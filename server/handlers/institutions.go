package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kijunserver/server/services"
)

// InstitutionHandler 医療機関検索系のエンドポイント
type InstitutionHandler struct {
	datasets *services.DatasetService
}

// NewInstitutionHandler 医療機関ハンドラを作成
func NewInstitutionHandler(datasets *services.DatasetService) *InstitutionHandler {
	return &InstitutionHandler{datasets: datasets}
}

// Search GET /api/institutions
// 医療機関名称の部分一致検索。search が空なら全件（名称単位に集約済み）。
// クエリ: search, case_sensitive
func (h *InstitutionHandler) Search(c *gin.Context) {
	institutions, err := h.datasets.SearchInstitutions(c.Query("search"), queryBool(c, "case_sensitive"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{
		"count":        len(institutions),
		"institutions": institutions,
	})
}

// Detail GET /api/institutions/by-name/:name
// 名称完全一致の機関詳細（集約情報・備考・届出一覧）
func (h *InstitutionHandler) Detail(c *gin.Context) {
	detail, err := h.datasets.GetInstitutionDetail(c.Param("name"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, detail)
}

// BedTypes GET /api/bed-types
// データセットに出現する病床区分の一覧
func (h *InstitutionHandler) BedTypes(c *gin.Context) {
	bedTypes, err := h.datasets.BedTypes()
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{"bed_types": bedTypes})
}

// BedCountMax GET /api/bed-count-max
// 指定区分ごとの最大病床数。クエリ: bed_type（繰り返し）
func (h *InstitutionHandler) BedCountMax(c *gin.Context) {
	maxima, err := h.datasets.BedCountMax(c.QueryArray("bed_type"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, gin.H{"bed_count_max": maxima})
}
