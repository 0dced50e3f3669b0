package table

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "tablegen/internal/pkg/http"
)

// ExportURI 导出记录路径参数
type ExportURI struct {
	ExportID string `uri:"export_id" binding:"required"`
}

// GetExport 获取导出记录
// @Summary      获取导出记录
// @Tags         导出
// @Produce      json
// @Param        export_id  path      string  true  "导出ID"
// @Success      200        {object}  map[string]interface{}  "成功响应"
// @Failure      404        {object}  ErrorResponse  "导出记录不存在"
// @Router       /api/v1/exports/{export_id} [get]
func (h *Handler) GetExport(c *gin.Context) {
	var uri ExportURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid export_id",
			Detail:  err.Error(),
		})
		return
	}

	rec, err := h.exportService.GetExport(c.Request.Context(), uri.ExportID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", rec))
}
