package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warehouse-manager/internal/logger"
	"warehouse-manager/internal/middleware"
	appErrors "warehouse-manager/pkg/errors"
	"warehouse-manager/pkg/utils"
)

// respondWithError maps domain errors onto HTTP statuses. Unknown errors are
// logged with the request id and answered with a generic 500.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Code == appErrors.CodeValidation:
		utils.ErrorResponseWithCode(c, http.StatusBadRequest, appErr.Code, appErr.Message)
	case errors.Is(err, appErrors.ErrUserAlreadyExists):
		utils.ErrorResponseWithCode(c, http.StatusConflict, appErrors.CodeConflict, err.Error())
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponseWithCode(c, http.StatusUnauthorized, appErrors.CodeUnauthorized, err.Error())
	case appErrors.IsTokenError(err):
		// malformed and expired are logged apart but look the same to clients
		logger.WithRequestID(middleware.GetRequestID(c)).Info("Token rejected", zap.Error(err))
		utils.ErrorResponseWithCode(c, http.StatusUnauthorized, appErrors.CodeUnauthorized, appErrors.ErrInvalidToken.Error())
	case errors.Is(err, appErrors.ErrUserNotFound),
		errors.Is(err, appErrors.ErrWarehouseNotFound):
		utils.ErrorResponseWithCode(c, http.StatusNotFound, appErrors.CodeNotFound, notFoundMessage(err))
	case errors.Is(err, appErrors.ErrTooManyAttempts):
		utils.ErrorResponseWithCode(c, http.StatusTooManyRequests, appErrors.CodeRateLimited, err.Error())
	case errors.Is(err, appErrors.ErrDeliveryFailed):
		utils.ErrorResponseWithCode(c, http.StatusInternalServerError, appErrors.CodeInternal, "Failed to send password reset email")
	default:
		logger.WithRequestID(middleware.GetRequestID(c)).Error("Internal server error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponseWithCode(c, http.StatusInternalServerError, appErrors.CodeInternal, "Internal server error")
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, appErrors.ErrWarehouseNotFound) {
		return appErrors.ErrWarehouseNotFound.Error()
	}
	return appErrors.ErrUserNotFound.Error()
}

func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.ErrorResponseWithCode(c, http.StatusUnauthorized, appErrors.CodeUnauthorized, "User not authenticated")
	}
	return userID, ok
}
