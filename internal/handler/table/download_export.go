package table

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DownloadExport 下载导出的 xlsx 文件
// @Summary      下载导出文件
// @Tags         导出
// @Produce      application/octet-stream
// @Param        export_id  path      string  true  "导出ID"
// @Success      200        {file}    binary  "文件流"
// @Failure      404        {object}  ErrorResponse  "导出记录不存在"
// @Router       /api/v1/exports/{export_id}/download [get]
func (h *Handler) DownloadExport(c *gin.Context) {
	var uri ExportURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid export_id",
			Detail:  err.Error(),
		})
		return
	}

	result, err := h.exportService.OpenExport(c.Request.Context(), uri.ExportID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer result.Data.Close()

	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Status(http.StatusOK)

	// 响应头已写出，失败时只能记录日志
	if _, err := io.Copy(c.Writer, result.Data); err != nil {
		log.Error().Err(err).Str("export_id", uri.ExportID).Msg("failed to stream workbook")
	}
}
