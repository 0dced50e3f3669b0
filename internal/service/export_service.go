package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tablegen/internal/export"
	exportModel "tablegen/internal/model/export"
	"tablegen/internal/pkg/apperr"
	"tablegen/internal/pkg/id"
	"tablegen/internal/pkg/storage"
	"tablegen/internal/table"
)

// ExportRepository 导出记录持久化接口，由 Mongo 仓库实现
type ExportRepository interface {
	Create(ctx context.Context, rec *exportModel.Record) error
	FindByID(ctx context.Context, id string) (*exportModel.Record, error)
	List(ctx context.Context, limit, offset int) ([]*exportModel.Record, int64, error)
}

// ExportService 生成表格并上传到存储
type ExportService struct {
	tables  *TableService
	storage storage.Storage
	repo    ExportRepository // 可为空，为空时不记录导出历史
}

// NewExportService 创建导出服务
func NewExportService(tables *TableService, store storage.Storage, repo ExportRepository) *ExportService {
	return &ExportService{
		tables:  tables,
		storage: store,
		repo:    repo,
	}
}

// HistoryEnabled 是否记录导出历史
func (s *ExportService) HistoryEnabled() bool {
	return s.repo != nil
}

// GenerateExportRequest 生成并导出请求
type GenerateExportRequest struct {
	Prompt   string
	FileName string
	Strict   bool
}

// GenerateExportResult 生成并导出结果
type GenerateExportResult struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	StorageKey string       `json:"storage_key"`
	URL        string       `json:"url"`
	Columns    int          `json:"columns"`
	Rows       int          `json:"rows"`
	Table      *table.Table `json:"table"`
}

// GenerateExport 生成表格、渲染 xlsx 并上传
// 记录写入失败时删除已上传的文件
func (s *ExportService) GenerateExport(ctx context.Context, req *GenerateExportRequest) (*GenerateExportResult, error) {
	var opts []table.Option
	if req.Strict {
		opts = append(opts, table.WithStrict())
	}

	tbl, err := s.tables.GenerateTable(ctx, req.Prompt, opts...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(tbl, &buf); err != nil {
		return nil, err
	}
	size := int64(buf.Len())

	exportID := id.New()
	key := storageKey(exportID)
	fileName := sanitizeFileName(req.FileName, exportID)
	logger := log.With().Str("export_id", exportID).Str("storage_key", key).Logger()

	uploadURL, err := s.storage.Upload(ctx, key, &buf, export.ContentType)
	if err != nil {
		logger.Error().Err(err).Msg("failed to upload workbook")
		return nil, apperr.Wrap(apperr.KindExport, "upload workbook", err)
	}

	if s.repo != nil {
		rec := &exportModel.Record{
			ID:          exportID,
			FileName:    fileName,
			Prompt:      req.Prompt,
			Model:       s.tables.ModelName(),
			StorageKey:  key,
			StorageType: s.storage.GetStorageType(),
			FileSize:    size,
			Columns:     tbl.Columns(),
			Rows:        len(tbl.Rows),
			Header:      tbl.Header,
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			logger.Error().Err(err).Msg("failed to record export, removing uploaded file")
			if delErr := s.storage.Delete(context.Background(), key); delErr != nil {
				logger.Warn().Err(delErr).Msg("failed to remove orphaned workbook")
			}
			return nil, apperr.Wrap(apperr.KindExport, "record export", err)
		}
	}

	url, err := s.storage.GetPresignedDownloadURL(ctx, key, 24*time.Hour)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to generate download URL")
		url = uploadURL
	}

	logger.Info().Int64("file_size", size).Msg("workbook stored")

	return &GenerateExportResult{
		ID:         exportID,
		FileName:   fileName,
		StorageKey: key,
		URL:        url,
		Columns:    tbl.Columns(),
		Rows:       len(tbl.Rows),
		Table:      tbl,
	}, nil
}

// GetExport 查询导出记录
func (s *ExportService) GetExport(ctx context.Context, exportID string) (*exportModel.Record, error) {
	if s.repo == nil {
		return nil, apperr.New(apperr.KindNotFound, "export history is disabled")
	}
	return s.repo.FindByID(ctx, exportID)
}

// ListExportsResult 导出记录列表
type ListExportsResult struct {
	Exports []*exportModel.Record `json:"exports"`
	Total   int64                 `json:"total"`
}

// ListExports 分页查询导出记录
func (s *ExportService) ListExports(ctx context.Context, limit, offset int) (*ListExportsResult, error) {
	if s.repo == nil {
		return nil, apperr.New(apperr.KindNotFound, "export history is disabled")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListExportsResult{Exports: records, Total: total}, nil
}

// DownloadResult 文件流
type DownloadResult struct {
	Data        io.ReadCloser
	FileName    string
	ContentType string
}

// OpenExport 打开导出文件
// 没有导出历史时按 ID 推导存储路径
func (s *ExportService) OpenExport(ctx context.Context, exportID string) (*DownloadResult, error) {
	if !id.IsValid(exportID) {
		return nil, apperr.New(apperr.KindNotFound, "export not found").WithDetail(exportID)
	}

	key := storageKey(exportID)
	fileName := sanitizeFileName("", exportID)

	if s.repo != nil {
		rec, err := s.repo.FindByID(ctx, exportID)
		if err != nil {
			return nil, err
		}
		key = rec.StorageKey
		fileName = rec.FileName
	} else {
		exists, err := s.storage.Exists(ctx, key)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindExport, "check workbook", err)
		}
		if !exists {
			return nil, apperr.New(apperr.KindNotFound, "export not found").WithDetail(exportID)
		}
	}

	data, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExport, "download workbook", err)
	}

	return &DownloadResult{
		Data:        data,
		FileName:    fileName,
		ContentType: export.ContentType,
	}, nil
}

func storageKey(exportID string) string {
	return "exports/" + exportID + export.DefaultExt
}

// sanitizeFileName 只保留文件名部分并补齐 .xlsx
func sanitizeFileName(name, exportID string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "table-" + exportID[:8]
	}
	name = strings.ReplaceAll(name, `"`, "")
	if !strings.EqualFold(filepath.Ext(name), export.DefaultExt) {
		name += export.DefaultExt
	}
	return name
}
