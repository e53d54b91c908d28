package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sshcollectorpro/fortidriver/internal/database"
)

// FactsHistory 某台设备的 facts 历史，最新在前
func FactsHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := database.ListFacts(c.Param("host"), limit)
	if errors.Is(err, database.ErrNotInitialized) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "DATABASE_UNAVAILABLE", Message: err.Error()})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	type entry struct {
		ID            string   `json:"id"`
		CollectedAt   string   `json:"collected_at"`
		Hostname      string   `json:"hostname"`
		Model         string   `json:"model"`
		SerialNumber  string   `json:"serial_number"`
		OSVersion     string   `json:"os_version"`
		FQDN          string   `json:"fqdn"`
		Uptime        int64    `json:"uptime"`
		InterfaceList []string `json:"interface_list"`
	}
	out := make([]entry, 0, len(records))
	for _, r := range records {
		facts := r.Facts()
		out = append(out, entry{
			ID:            r.ID,
			CollectedAt:   r.CollectedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Hostname:      facts.Hostname,
			Model:         facts.Model,
			SerialNumber:  facts.SerialNumber,
			OSVersion:     facts.OSVersion,
			FQDN:          facts.FQDN,
			Uptime:        facts.Uptime,
			InterfaceList: facts.InterfaceList,
		})
	}
	success(c, gin.H{"host": c.Param("host"), "records": out})
}

// Health 健康检查
func Health(c *gin.Context) {
	db := "disabled"
	if conn := database.GetDB(); conn != nil {
		db = "ok"
		if sqlDB, err := conn.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			db = "error"
		}
	}
	success(c, gin.H{"status": "running", "database": db})
}
