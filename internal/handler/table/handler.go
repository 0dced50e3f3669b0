package table

import (
	"github.com/gin-gonic/gin"

	httputil "tablegen/internal/pkg/http"
	"tablegen/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Handler 表格模块处理器
type Handler struct {
	tableService  *service.TableService
	exportService *service.ExportService
}

// NewHandler 创建表格模块处理器
func NewHandler(tableService *service.TableService, exportService *service.ExportService) *Handler {
	return &Handler{
		tableService:  tableService,
		exportService: exportService,
	}
}

// abortWithError 按业务错误类型写出错误响应
func abortWithError(c *gin.Context, err error) {
	status, resp := httputil.FromError(err)
	c.AbortWithStatusJSON(status, resp)
}
