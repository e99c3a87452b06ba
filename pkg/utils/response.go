package utils

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

// ErrorResponseWithCode is ErrorResponse plus a machine-readable code.
func ErrorResponseWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// AbortWithError writes the error body and stops the middleware chain.
func AbortWithError(c *gin.Context, status int, message string) {
	ErrorResponse(c, status, message)
	c.Abort()
}
