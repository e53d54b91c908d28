package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
	"github.com/sshcollectorpro/fortidriver/pkg/logger"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Message: "ok", Data: data})
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: code, Message: err.Error(), RequestID: c.GetString("request_id")})
}

// fail 按驱动错误类型选择状态码
func fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "ERROR"

	var connErr *fortinet.ConnectionError
	switch {
	case errors.Is(err, fortinet.ErrUnknownGetter):
		status, code = http.StatusBadRequest, "INVALID_GETTER"
	case errors.Is(err, fortinet.ErrInvalidRetrieve):
		status, code = http.StatusBadRequest, "INVALID_RETRIEVE"
	case errors.As(err, &connErr):
		status, code = http.StatusBadGateway, "DEVICE_UNREACHABLE"
	case errors.Is(err, fortinet.ErrConnectionClosed):
		status, code = http.StatusBadGateway, "CONNECTION_CLOSED"
	case errors.Is(err, fortinet.ErrCommandRejected):
		status, code = http.StatusBadGateway, "COMMAND_REJECTED"
	}

	requestID := c.GetString("request_id")
	logger.WithError(err).WithField("request_id", requestID).Warnf("Request failed: %s", code)
	c.JSON(status, ErrorResponse{Code: code, Message: err.Error(), RequestID: requestID})
}
