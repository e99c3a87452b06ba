package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-manager/internal/config"
	"warehouse-manager/internal/middleware"
	"warehouse-manager/internal/usecase/user"
	appErrors "warehouse-manager/pkg/errors"
	"warehouse-manager/pkg/utils"
)

type UserHandler struct {
	service    *user.Service
	cookies    config.CookieConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewUserHandler(service *user.Service, cookies config.CookieConfig, accessTTL, refreshTTL time.Duration) *UserHandler {
	return &UserHandler{
		service:    service,
		cookies:    cookies,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AuthGuards are optional per-endpoint attempt limiters.
type AuthGuards struct {
	Login          gin.HandlerFunc
	ForgotPassword gin.HandlerFunc
	ResetPassword  gin.HandlerFunc
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, guards AuthGuards) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", chain(guards.Login, h.Login)...)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/forgot-password", chain(guards.ForgotPassword, h.ForgotPassword)...)
		auth.POST("/reset-password", chain(guards.ResetPassword, h.ResetPassword)...)

		auth.POST("/logout", requireAuth, h.Logout)
		auth.POST("/change-password", requireAuth, h.ChangePassword)
		auth.GET("/profile", requireAuth, h.GetProfile)
		auth.GET("/protected", requireAuth, h.Protected)
	}
}

type loginResponse struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type refreshResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type identityResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = utils.SanitizeIdentifier(req.Username)
	req.Email = utils.SanitizeEmail(req.Email)

	created, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", created)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = utils.SanitizeIdentifier(req.Username)

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setCookie(c, h.cookies.AccessName, session.AccessToken, h.accessTTL)
	h.setCookie(c, h.cookies.RefreshName, session.RefreshToken, h.refreshTTL)

	utils.SuccessResponse(c, http.StatusOK, "Login successful", loginResponse{
		UserID:           session.User.ID,
		Username:         session.User.Username,
		AccessToken:      session.AccessToken,
		AccessExpiresAt:  session.AccessExpiresAt,
		RefreshToken:     session.RefreshToken,
		RefreshExpiresAt: session.RefreshExpiresAt,
	})
}

// Refresh tries the refresh cookie, then the JSON body, then the
// Authorization header. The first token that verifies wins.
func (h *UserHandler) Refresh(c *gin.Context) {
	sources := []func() (string, error){
		func() (string, error) {
			token, _ := c.Cookie(h.cookies.RefreshName)
			return token, nil
		},
		func() (string, error) {
			var req user.RefreshRequest
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			return req.RefreshToken, nil
		},
		func() (string, error) {
			return middleware.BearerToken(c), nil
		},
	}

	var (
		access *user.AccessToken
		err    error
	)
	for _, source := range sources {
		token, bindErr := source()
		if bindErr != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		if token == "" {
			continue
		}
		access, err = h.service.Refresh(c.Request.Context(), token)
		if err == nil || !appErrors.IsTokenError(err) {
			break
		}
	}
	if access == nil && err == nil {
		err = appErrors.ErrUnauthorized
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setCookie(c, h.cookies.AccessName, access.Token, h.accessTTL)
	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", refreshResponse{
		AccessToken:     access.Token,
		AccessExpiresAt: access.ExpiresAt,
	})
}

// Logout clears both cookies. Issued tokens stay valid until they expire.
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.service.Logout(c.Request.Context(), userID)
	h.clearCookie(c, h.cookies.AccessName)
	h.clearCookie(c, h.cookies.RefreshName)

	utils.SuccessResponse(c, http.StatusOK, "Logout successful", nil)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "If the email is registered, a password reset link has been sent", nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		// a bad reset link is a client input problem, not a session failure
		if appErrors.IsTokenError(err) {
			utils.ErrorResponseWithCode(c, http.StatusBadRequest, appErrors.CodeValidation, "Invalid or expired reset token")
			return
		}
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password reset successfully", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *UserHandler) Protected(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Access granted", identityResponse{
		UserID:   profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
	})
}

func (h *UserHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

func (h *UserHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

// chain drops nil guards so optional middleware can be passed unconditionally.
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
