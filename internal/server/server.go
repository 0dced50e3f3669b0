package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tablegen/internal/config"
	"tablegen/internal/handler"
	tableHandler "tablegen/internal/handler/table"
	"tablegen/internal/pkg/mongodb"
	"tablegen/internal/pkg/storage"
	"tablegen/internal/pkg/storagefactory"
	exportRepo "tablegen/internal/repository/export"
	"tablegen/internal/server/middleware"
	"tablegen/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg       *config.Config
	engine    *gin.Engine
	mongo     *mongodb.Client
	storage   storage.Storage
	tableSvc  *service.TableService
	exportSvc *service.ExportService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	store, err := storagefactory.NewStorage(context.Background(), &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	// 初始化 MongoDB (可选，用于记录导出历史)
	var mongoClient *mongodb.Client
	var repo service.ExportRepository
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without export history")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
			repo = exportRepo.NewExportRepo(mongoClient.Database())
		}
	}

	tableSvc := service.NewTableService(cfg.API, cfg.Parser)

	srv := &Server{
		cfg:       cfg,
		engine:    engine,
		mongo:     mongoClient,
		storage:   store,
		tableSvc:  tableSvc,
		exportSvc: service.NewExportService(tableSvc, store, repo),
	}

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler(s.storage, s.exportSvc.HistoryEnabled())
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 本地存储直接提供文件访问，与 storage.local.base_url 对应
	if s.storage.GetStorageType() == string(storage.StorageTypeLocal) && s.cfg.Storage.Local != nil {
		s.engine.Static("/files", s.cfg.Storage.Local.BasePath)
	}

	tableHdl := tableHandler.NewHandler(s.tableSvc, s.exportSvc)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/tables", tableHdl.GenerateTable)
		v1.POST("/tables/export", tableHdl.ExportTable)
		v1.GET("/exports/:export_id/download", tableHdl.DownloadExport)

		if s.exportSvc.HistoryEnabled() {
			v1.GET("/exports", tableHdl.ListExports)
			v1.GET("/exports/:export_id", tableHdl.GetExport)
		} else {
			log.Warn().Msg("MongoDB not configured, export history endpoints disabled")
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.mongo != nil {
			if err := s.mongo.Close(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}

		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
