package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

// OTPNotifier delivers password-reset codes.
type OTPNotifier interface {
	SendOTP(ctx context.Context, email, otp string, expiresAt time.Time) error
}

// LogNotifier writes codes to the log instead of sending them.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) SendOTP(_ context.Context, email, otp string, expiresAt time.Time) error {
	n.Log.Info("Password reset OTP issued", "email", email, "expiresAt", expiresAt)
	n.Log.Debug("Password reset OTP", "email", email, "otp", otp)
	return nil
}

type AuthService struct {
	store    *store.Store
	tokens   *auth.Tokens
	notifier OTPNotifier
	now      func() time.Time
	log      *logger.Logger
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

var errBadCredentials = apierr.Unauthorized("Invalid credentials")

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := apierr.Validate(in); err != nil {
		return nil, err
	}
	u, err := s.store.Users.FindOne(ctx, store.Q().Where("email", in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apierr.Wrap(http.StatusInternalServerError, "internal", "Error generating token", err)
	}
	s.log.Info("User logged in", "userId", u.ID, "role", u.Role)
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Me returns the user a token was issued to.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, apierr.FromStore(err, "User")
	}
	return u, nil
}

// Authenticate verifies a bearer token.
func (s *AuthService) Authenticate(raw string) (*auth.Claims, error) {
	return s.tokens.Parse(raw)
}

type ResetRequestInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset issues a one-time code for email. Earlier unused
// codes stop working. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, in ResetRequestInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := apierr.Validate(in); err != nil {
		return err
	}
	u, err := s.store.Users.FindOne(ctx, store.Q().Where("email", in.Email))
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("Password reset requested for unknown email", "email", in.Email)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.invalidateTokens(ctx, u.ID); err != nil {
		return err
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := auth.HashPassword(otp)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	token := &models.PasswordResetToken{
		UserID:    u.ID,
		Email:     u.Email,
		OTPHash:   hash,
		ExpiresAt: s.now().Add(models.ResetTokenTTL),
	}
	if err := s.store.ResetTokens.Create(ctx, token); err != nil {
		return err
	}
	return s.notifier.SendOTP(ctx, u.Email, otp, token.ExpiresAt)
}

func (s *AuthService) invalidateTokens(ctx context.Context, userID string) error {
	open, err := s.store.ResetTokens.Find(ctx, store.Q().Where("user_id", userID).Where("used", false))
	if err != nil {
		return err
	}
	for i := range open {
		open[i].Used = true
		if err := s.store.ResetTokens.Update(ctx, &open[i]); err != nil {
			return err
		}
	}
	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ResetPassword redeems the latest code issued for the email.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := apierr.Validate(in); err != nil {
		return err
	}

	token, err := s.store.ResetTokens.FindOne(ctx, store.Q().
		Where("email", in.Email).
		SortBy("created_at", true))
	if errors.Is(err, store.ErrNotFound) {
		return apierr.BadRequest("Invalid or expired OTP")
	}
	if err != nil {
		return err
	}
	switch {
	case token.Attempts >= models.MaxOTPAttempts:
		return errTooManyAttempts
	case token.Used:
		return apierr.BadRequest("OTP has already been used")
	case token.Expired(s.now()):
		return apierr.BadRequest("OTP has expired")
	case !auth.CheckPassword(token.OTPHash, in.OTP):
		return s.failAttempt(ctx, token)
	}

	u, err := s.store.Users.FindByID(ctx, token.UserID)
	if err != nil {
		return apierr.FromStore(err, "User")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token.Used = true
	if err := s.store.ResetTokens.Update(ctx, token); err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.store.Users.Update(ctx, u); err != nil {
		return err
	}
	s.log.Info("Password reset", "userId", u.ID)
	return nil
}

var errTooManyAttempts = apierr.BadRequest("Too many invalid attempts, request a new OTP")

// failAttempt counts a wrong code and burns the token once the limit is hit.
func (s *AuthService) failAttempt(ctx context.Context, token *models.PasswordResetToken) error {
	token.Attempts++
	if token.Attempts >= models.MaxOTPAttempts {
		token.Used = true
	}
	if err := s.store.ResetTokens.Update(ctx, token); err != nil {
		return err
	}
	if token.Used {
		s.log.Warn("Password reset token locked after failed attempts", "userId", token.UserID)
		return errTooManyAttempts
	}
	return apierr.BadRequest("Invalid OTP")
}

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"oneof=admin user"`
}

// CreateUser registers an account. Used by the create-admin command and
// seeding.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := apierr.Validate(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, apierr.FromStore(err, "User")
	}
	return u, nil
}

// HasAdmin reports whether any admin account exists.
func (s *AuthService) HasAdmin(ctx context.Context) (bool, error) {
	n, err := s.store.Users.Count(ctx, store.Q().Where("role", string(models.RoleAdmin)))
	return n > 0, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
