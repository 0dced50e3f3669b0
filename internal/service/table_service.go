package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"tablegen/internal/ai"
	"tablegen/internal/config"
	"tablegen/internal/export"
	"tablegen/internal/pkg/apperr"
	"tablegen/internal/table"
)

// TableService 表格生成服务
// 每次调用相互独立，不在调用之间保存状态
type TableService struct {
	api        config.APIConfig
	parser     config.ParserConfig
	clientOpts []ai.Option
}

// NewTableService 创建表格生成服务
// API 配置在第一次生成时才校验
func NewTableService(api config.APIConfig, parser config.ParserConfig, clientOpts ...ai.Option) *TableService {
	return &TableService{
		api:        api,
		parser:     parser,
		clientOpts: clientOpts,
	}
}

// ModelName 配置的模型名称
func (s *TableService) ModelName() string {
	return s.api.Model
}

// GenerateResult 异步生成结果
type GenerateResult struct {
	Table *table.Table
	Err   error
}

// GenerateTable 发送需求描述并解析返回的表格
// opts 在配置的解析选项之后生效
func (s *TableService) GenerateTable(ctx context.Context, prompt string, opts ...table.Option) (*table.Table, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "prompt is empty")
	}

	settings, err := s.api.Resolve()
	if err != nil {
		log.Error().Err(err).Msg("invalid API configuration")
		return nil, err
	}

	logger := log.With().Str("model", settings.Model).Logger()

	resp, err := ai.NewClient(settings, s.clientOpts...).Send(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("chat completion failed")
		return nil, err
	}

	parseOpts := append([]table.Option{table.Strict(s.parser.Strict)}, opts...)
	tbl, err := table.Parse(resp.Body, parseOpts...)
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse table from response")
		return nil, err
	}

	logger.Info().
		Int("columns", tbl.Columns()).
		Int("rows", len(tbl.Rows)).
		Bool("ragged", tbl.Ragged()).
		Msg("table generated")

	return tbl, nil
}

// ExportTable 将表格保存为 xlsx，返回最终路径
func (s *TableService) ExportTable(ctx context.Context, tbl *table.Table, path string) (string, error) {
	if tbl == nil {
		return "", apperr.New(apperr.KindExport, "table is nil")
	}
	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(apperr.KindExport, "export cancelled", err)
	}
	return export.WriteFile(tbl, path)
}

// Generate 在后台执行 GenerateTable，结果通过通道返回，通道只发送一次后关闭
func (s *TableService) Generate(ctx context.Context, prompt string, opts ...table.Option) <-chan GenerateResult {
	ch := make(chan GenerateResult, 1)
	go func() {
		defer close(ch)
		tbl, err := s.GenerateTable(ctx, prompt, opts...)
		ch <- GenerateResult{Table: tbl, Err: err}
	}()
	return ch
}
