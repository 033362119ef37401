package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kijunserver/database"
	"kijunserver/internal/config"
	"kijunserver/server/handlers"
	"kijunserver/server/middleware"
	"kijunserver/server/services"
)

// Server 施設基準届出分析 API サーバ
type Server struct {
	config *config.Config
	db     *database.SnapshotDB

	datasetService      *services.DatasetService
	similarityService   *services.SimilarityService
	filingStatusService *services.FilingStatusService

	institutionHandler *handlers.InstitutionHandler
	filingHandler      *handlers.FilingHandler
	similarityHandler  *handlers.SimilarityHandler

	engine *gin.Engine
}

// New サービスとハンドラを組み立ててサーバを作成する。
// スナップショットの読み込みに失敗した場合でもサーバは起動し、
// 該当エンドポイントは 503 を返す（データ未投入の運用を許す）。
func New(cfg *config.Config, db *database.SnapshotDB) *Server {
	s := &Server{config: cfg, db: db}

	s.datasetService = services.NewDatasetService(db)
	s.similarityService = services.NewSimilarityService(s.datasetService, cfg.SimilarityCacheSize)
	s.filingStatusService = services.NewFilingStatusService(s.datasetService)

	s.institutionHandler = handlers.NewInstitutionHandler(s.datasetService)
	s.filingHandler = handlers.NewFilingHandler(s.datasetService, s.filingStatusService)
	s.similarityHandler = handlers.NewSimilarityHandler(s.similarityService, cfg.SimilarityTopNDefault)

	s.engine = s.buildEngine()
	return s
}

// LoadDataset スナップショットをメモリに読み込む
func (s *Server) LoadDataset() error {
	return s.datasetService.Load()
}

// buildEngine ミドルウェアとルーティングを構成する
func (s *Server) buildEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.GinRequestIDMiddleware())
	engine.Use(middleware.GinLoggerMiddleware())
	engine.Use(middleware.GinCORSMiddleware())
	engine.Use(middleware.GinGzipMiddleware())
	engine.Use(middleware.GinRateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))

	api := engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/institutions", s.institutionHandler.Search)
		api.GET("/institutions/by-name/:name", s.institutionHandler.Detail)
		api.GET("/bed-types", s.institutionHandler.BedTypes)
		api.GET("/bed-count-max", s.institutionHandler.BedCountMax)

		api.GET("/filings", s.filingHandler.Options)
		api.GET("/filing-search", s.filingHandler.Search)
		api.GET("/filing-status", s.filingHandler.Status)

		api.GET("/similarity", s.similarityHandler.Compute)
		api.GET("/crosstab", s.similarityHandler.CrossTab)

		admin := api.Group("/admin")
		{
			admin.POST("/reload", s.handleReload)
			admin.GET("/similarity-cache", s.similarityHandler.CacheStats)
			admin.POST("/similarity-cache/clear", s.similarityHandler.ClearCache)
		}
	}
	return engine
}

// Engine 構成済みの gin エンジンを返す（テスト用）
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run 指定ポートで待ち受ける
func (s *Server) Run() error {
	return s.engine.Run(":" + s.config.Port)
}

// HTTPServer graceful shutdown 用の http.Server を返す
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// handleHealth GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	recordCount, err := s.db.RecordCount()
	status := gin.H{
		"status":    "ok",
		"loaded_at": s.datasetService.LoadedAt(),
	}
	if err != nil {
		status["status"] = "degraded"
		status["snapshot"] = "unavailable"
	} else {
		status["snapshot_records"] = recordCount
	}
	handlers.SendJSONResponse(c, http.StatusOK, status)
}

// handleReload POST /api/admin/reload
// バッチ取り込みでスナップショットを作り直した後に呼ぶ。
// 読み込みが成功すると類似度キャッシュも破棄される。
func (s *Server) handleReload(c *gin.Context) {
	if err := s.datasetService.Load(); err != nil {
		handlers.HandleServiceError(c, err)
		return
	}
	handlers.SendJSONResponse(c, http.StatusOK, gin.H{"reloaded": true})
}
