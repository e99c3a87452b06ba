package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"warehouse-manager/internal/config"
	"warehouse-manager/internal/domain/notification"
	domainUser "warehouse-manager/internal/domain/user"
	"warehouse-manager/internal/logger"
	appErrors "warehouse-manager/pkg/errors"
	"warehouse-manager/pkg/security"
	"warehouse-manager/pkg/utils"
)

const resetMailSubject = "Password reset request"

// Service implements the authentication use cases
type Service struct {
	userRepo    domainUser.Repository
	hasher      security.PasswordHasher
	tokens      *security.TokenManager
	resets      *security.ResetTokenSigner
	mailer      notification.Mailer
	resetURL    string
	resetMaxAge time.Duration

	// verified against on unknown usernames so both login failures cost one hash check
	absentUserHash string
}

func NewService(
	userRepo domainUser.Repository,
	hasher security.PasswordHasher,
	tokens *security.TokenManager,
	resets *security.ResetTokenSigner,
	mailer notification.Mailer,
	cfg *config.Config,
) *Service {
	absentUserHash, err := hasher.Hash("absent-user")
	if err != nil {
		logger.Warn("Failed to precompute login hash", zap.Error(err))
	}

	return &Service{
		userRepo:       userRepo,
		hasher:         hasher,
		tokens:         tokens,
		resets:         resets,
		mailer:         mailer,
		resetURL:       cfg.ResetURL(),
		resetMaxAge:    cfg.Reset.MaxAge,
		absentUserHash: absentUserHash,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		logger.Warn("Registration attempt with taken username or email",
			zap.String("username", req.Username),
			zap.String("event", "registration_failed_duplicate"),
		)
		return nil, appErrors.ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	// the unique index still catches a concurrent registration
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Registration lost a uniqueness race",
				zap.String("username", req.Username),
				zap.String("event", "registration_failed_duplicate"),
			)
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(user), nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			s.hasher.Verify(req.Password, s.absentUserHash)
			logger.Warn("Login attempt with unknown username",
				zap.String("username", req.Username),
				zap.String("event", "login_failed_unknown_user"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logger.Warn("Login attempt with invalid password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	access, accessExp, err := s.tokens.IssueAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "login_success"),
	)

	return &Session{
		User:             ToUserResponse(user),
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh mints a new access token. The refresh token is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	if refreshToken == "" {
		return nil, appErrors.ErrUnauthorized
	}

	claims, err := s.tokens.Verify(refreshToken, security.KindRefresh)
	if err != nil {
		logger.Warn("Token refresh attempt with invalid token",
			zap.String("event", "token_refresh_failed_invalid_token"),
			zap.Error(err),
		)
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Token refresh for vanished user",
				zap.Int64("user_id", userID),
				zap.String("event", "token_refresh_failed_user_not_found"),
			)
			return nil, appErrors.ErrInvalidToken
		}
		return nil, err
	}

	access, exp, err := s.tokens.IssueAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logger.Debug("Access token refreshed",
		zap.Int64("user_id", user.ID),
		zap.String("event", "token_refreshed"),
	)

	return &AccessToken{Token: access, ExpiresAt: exp}, nil
}

// Logout has nothing to revoke: tokens stay valid until they expire and the
// client drops its cookies.
func (s *Service) Logout(_ context.Context, userID int64) {
	logger.Info("User logged out",
		zap.Int64("user_id", userID),
		zap.String("event", "logout"),
	)
}

// ForgotPassword behaves identically for known and unknown emails, except
// that a mail delivery failure for a known email is reported.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for unknown email",
				zap.String("event", "password_reset_requested_unknown_email"),
			)
			return nil
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	token, err := s.resets.GenerateResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	msg := notification.Message{
		To:      user.Email,
		Subject: resetMailSubject,
		Body: fmt.Sprintf(
			"Hello %s,\n\nTo reset your password, open the link below:\n\n%s\n\n"+
				"The link expires in %s. If you did not request a reset, ignore this email.\n",
			user.Username, link, s.resetMaxAge,
		),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("Failed to send password reset email",
			zap.Int64("user_id", user.ID),
			zap.String("event", "password_reset_mail_failed"),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", appErrors.ErrDeliveryFailed, err)
	}

	logger.Info("Password reset email sent",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_reset_token_generated"),
	)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	email, err := s.resets.VerifyResetToken(req.Token, s.resetMaxAge)
	if err != nil {
		logger.Warn("Password reset attempt with invalid token",
			zap.String("event", "password_reset_failed_invalid_token"),
			zap.Error(err),
		)
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashedPassword, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password reset successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_reset_success"),
	)
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if req.OldPassword == req.NewPassword {
		return appErrors.Validation(appErrors.ErrSamePassword.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		logger.Warn("Password change attempt with invalid old password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password changed successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_change_success"),
	)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
