package table

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "tablegen/internal/pkg/http"
	"tablegen/internal/service"
)

// ExportTableRequest 生成并导出请求
type ExportTableRequest struct {
	Prompt   string `json:"prompt"`              // 需求描述
	FileName string `json:"file_name,omitempty"` // 下载文件名（可选）
	Strict   bool   `json:"strict,omitempty"`    // 严格模式
}

// ExportTable 生成表格并保存为 xlsx
// @Summary      生成并导出表格
// @Description  生成表格后渲染为 xlsx 上传到存储，返回下载地址
// @Tags         表格
// @Accept       json
// @Produce      json
// @Param        request  body      ExportTableRequest  true  "导出请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"id\": \"...\", \"url\": \"...\"}}"
// @Failure      400      {object}  ErrorResponse  "需求描述为空"
// @Failure      422      {object}  ErrorResponse  "回复中没有可用的表格"
// @Failure      500      {object}  ErrorResponse  "导出失败"
// @Failure      502      {object}  ErrorResponse  "模型接口请求失败"
// @Router       /api/v1/tables/export [post]
func (h *Handler) ExportTable(c *gin.Context) {
	var req ExportTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	result, err := h.exportService.GenerateExport(c.Request.Context(), &service.GenerateExportRequest{
		Prompt:   req.Prompt,
		FileName: req.FileName,
		Strict:   req.Strict,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", result))
}
