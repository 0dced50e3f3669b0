package table

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "tablegen/internal/pkg/http"
	tbl "tablegen/internal/table"
)

// GenerateTableRequest 生成表格请求
type GenerateTableRequest struct {
	Prompt string `json:"prompt"`           // 需求描述
	Strict bool   `json:"strict,omitempty"` // 严格模式
}

// GenerateTable 根据需求描述生成表格
// @Summary      生成表格
// @Description  将需求描述发送给模型，解析回复中的竖线分隔表格
// @Tags         表格
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateTableRequest  true  "生成请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"  "{\"code\": 0, \"message\": \"success\", \"data\": {\"header\": [...], \"rows\": [...]}}"
// @Failure      400      {object}  ErrorResponse  "需求描述为空"
// @Failure      422      {object}  ErrorResponse  "回复中没有可用的表格"
// @Failure      502      {object}  ErrorResponse  "模型接口请求失败"
// @Router       /api/v1/tables [post]
func (h *Handler) GenerateTable(c *gin.Context) {
	var req GenerateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	var opts []tbl.Option
	if req.Strict {
		opts = append(opts, tbl.WithStrict())
	}

	result, err := h.tableService.GenerateTable(c.Request.Context(), req.Prompt, opts...)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", result))
}
