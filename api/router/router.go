package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sshcollectorpro/fortidriver/api/handler"
	"github.com/sshcollectorpro/fortidriver/internal/metrics"
	"github.com/sshcollectorpro/fortidriver/internal/service"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// Version 服务版本
const Version = "1.0.0"

// SetupRouter 设置路由
func SetupRouter(mode string, batch *service.BatchService, backup *service.BackupService) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())

	getterHandler := handler.NewGetterHandler(batch)
	backupHandler := handler.NewBackupHandler(backup)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "fortidriver",
			"version": Version,
			"status":  "running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handler.Health)

		v1.GET("/getters", getterHandler.ListGetters)
		v1.POST("/getters", getterHandler.Run)

		v1.POST("/backup", backupHandler.Backup)
		v1.GET("/backups", backupHandler.List)

		v1.GET("/facts/:host", handler.FactsHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if status >= http.StatusInternalServerError {
			entry.Errorf("HTTP Request")
			return
		}
		if status >= http.StatusBadRequest {
			entry.Warnf("HTTP Request")
			return
		}
		entry.Infof("HTTP Request")
	}
}
