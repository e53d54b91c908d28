package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sshcollectorpro/fortidriver/internal/database"
	"github.com/sshcollectorpro/fortidriver/internal/service"
)

// BackupHandler 备份接口处理器
type BackupHandler struct {
	svc *service.BackupService
}

func NewBackupHandler(svc *service.BackupService) *BackupHandler { return &BackupHandler{svc: svc} }

// Backup 备份一台设备的配置
func (h *BackupHandler) Backup(c *gin.Context) {
	var req service.BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	result, err := h.svc.Backup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, result)
}

// List 备份记录，可按 host 过滤
func (h *BackupHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := database.ListBackups(c.Query("host"), limit)
	if errors.Is(err, database.ErrNotInitialized) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "DATABASE_UNAVAILABLE", Message: err.Error()})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	success(c, records)
}
