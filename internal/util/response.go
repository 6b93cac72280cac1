package util

import (
	"errors"
	"net/http"

	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// StatusOf 把领域错误映射成 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, skilltree.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, skilltree.ErrOrderConflict):
		return http.StatusConflict
	case errors.Is(err, skilltree.ErrMissingStructuralContext),
		errors.Is(err, skilltree.ErrMalformedPath),
		errors.Is(err, skilltree.ErrIncompleteInput),
		errors.Is(err, skilltree.ErrDepthLimitExceeded),
		errors.Is(err, ErrInvalidFileType):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailRegistered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 按错误类型写出响应，5xx 只记录日志不暴露细节
func HandleError(c *gin.Context, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, code, err.Error())
}
