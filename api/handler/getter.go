package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
)

// GetterHandler 查询接口处理器
type GetterHandler struct {
	batch *service.BatchService
}

func NewGetterHandler(batch *service.BatchService) *GetterHandler {
	return &GetterHandler{batch: batch}
}

// ListGetters 可用的查询名
func (h *GetterHandler) ListGetters(c *gin.Context) {
	success(c, gin.H{"getters": fortinet.GetterNames()})
}

// Run 在一台或多台设备上执行查询
func (h *GetterHandler) Run(c *gin.Context) {
	var req service.GetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	results, err := h.batch.Run(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"total": len(results), "results": results})
}
