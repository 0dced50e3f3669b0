package table

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "tablegen/internal/pkg/http"
)

// ListExportsRequest 查询导出记录请求
type ListExportsRequest struct {
	Page     int `form:"page"`      // 页码（默认1）
	PageSize int `form:"page_size"` // 每页数量（默认20）
}

// ListExports 查询导出记录
// @Summary      查询导出记录
// @Tags         导出
// @Produce      json
// @Param        page       query     int  false  "页码（默认1）"
// @Param        page_size  query     int  false  "每页数量（默认20，最大100）"
// @Success      200        {object}  map[string]interface{}  "成功响应"
// @Router       /api/v1/exports [get]
func (h *Handler) ListExports(c *gin.Context) {
	var req ListExportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid query parameters",
			Detail:  err.Error(),
		})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	result, err := h.exportService.ListExports(c.Request.Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", gin.H{
		"exports":   result.Exports,
		"total":     result.Total,
		"page":      req.Page,
		"page_size": req.PageSize,
	}))
}
