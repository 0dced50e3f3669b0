package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tablegen/internal/pkg/storage"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	storage        storage.Storage
	historyEnabled bool
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(store storage.Storage, historyEnabled bool) *HealthHandler {
	return &HealthHandler{
		storage:        store,
		historyEnabled: historyEnabled,
	}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，附带存储和导出历史状态
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"storage": h.storage.GetStorageType(),
		"history": h.historyEnabled,
	})
}
