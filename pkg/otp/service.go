package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/cache"
	"github.com/aquilesbailo123/Raven-backend/pkg/sendemail"
	"github.com/aquilesbailo123/Raven-backend/pkg/users"
)

var (
	ErrTooManyRequests = errors.New("too many verification codes requested, please try again later")
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrUnknownEmail    = errors.New("no account is registered with this e-mail address")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrResendCooldown  = errors.New("email confirmation in progress")
	ErrInactive        = errors.New("user account is inactive")
)

const (
	codeLength     = 6
	codeTTL        = 10 * time.Minute
	maxCodesPerHr  = 3
	resendCooldown = 5 * time.Minute
)

type OTPService interface {
	// SendVerification issues a fresh code and emails it.
	SendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) (VerifyResult, error)
	ResendVerification(ctx context.Context, email string) error
}

type otpService struct {
	repo     OTPRepository
	userRepo users.UserRepository
	es       sendemail.EmailService
	cache    cache.Store
	tokens   users.TokenIssuer
	log      *zap.Logger
	now      func() time.Time
}

func NewOTPService(repo OTPRepository, userRepo users.UserRepository, es sendemail.EmailService, store cache.Store, tokens users.TokenIssuer, log *zap.Logger) OTPService {
	return &otpService{repo: repo, userRepo: userRepo, es: es, cache: store, tokens: tokens, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *otpService) SendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	count, err := s.repo.CountOTPsSince(ctx, email, s.now().Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("failed to check OTP count: %w", err)
	}
	if count >= maxCodesPerHr {
		return ErrTooManyRequests
	}

	code, err := generateOTP(codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	if _, err := s.repo.CreateOTP(ctx, email, code, s.now().Add(codeTTL)); err != nil {
		return fmt.Errorf("failed to create OTP: %w", err)
	}

	if err := s.sendOTPEmail(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	if err := s.repo.DeleteExpiredOTPs(ctx); err != nil {
		s.log.Warn("expired OTP cleanup failed", zap.Error(err))
	}
	return nil
}

func (s *otpService) VerifyEmail(ctx context.Context, email, code string) (VerifyResult, error) {
	email = normalizeEmail(email)
	otp, err := s.repo.GetLatestPendingOTP(ctx, email)
	if err != nil {
		return VerifyResult{}, err
	}

	if s.now().After(otp.ExpiresAt) {
		return VerifyResult{}, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(strings.TrimSpace(code))) != 1 {
		return VerifyResult{}, ErrInvalidCode
	}

	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return VerifyResult{}, ErrUnknownEmail
		}
		return VerifyResult{}, err
	}
	if !u.IsActive {
		return VerifyResult{}, ErrInactive
	}

	if err := s.repo.MarkOTPAsVerified(ctx, otp.ID); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to mark OTP as verified: %w", err)
	}
	if err := s.userRepo.UpdateVerifiedAtByEmail(ctx, email, s.now()); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to update user verification: %w", err)
	}

	token, err := s.tokens.Issue(users.PrincipalFor(u))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("email verified", zap.Int64("user_id", u.ID))
	return VerifyResult{
		Detail:      "Email verified successfully. You are now logged in.",
		AccessToken: token,
	}, nil
}

func resendKey(email string) string {
	return "resend_verification:" + email
}

func (s *otpService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ErrUnknownEmail
		}
		return err
	}
	if u.IsVerified() {
		return ErrAlreadyVerified
	}

	ok, err := s.cache.SetNX(ctx, resendKey(email), resendCooldown)
	if err != nil {
		return fmt.Errorf("check resend cooldown: %w", err)
	}
	if !ok {
		return ErrResendCooldown
	}

	s.log.Info("sending email confirmation", zap.Int64("user_id", u.ID))
	if err := s.SendVerification(ctx, email); err != nil {
		if derr := s.cache.Delete(ctx, resendKey(email)); derr != nil {
			s.log.Warn("failed to clear resend cooldown", zap.Error(derr))
		}
		return err
	}
	return nil
}

func generateOTP(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

func (s *otpService) sendOTPEmail(ctx context.Context, toEmail, code string) error {
	subject := "Verify your Raven account"
	plainTextContent := fmt.Sprintf("Your verification code is: %s. This code will expire in 10 minutes.", code)
	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>Verify your e-mail</h2>
			<p>Your verification code is:</p>
			<div style="font-size: 24px; font-weight: bold; color: #333; padding: 10px; background-color: #f5f5f5; border-radius: 5px; display: inline-block;">
				%s
			</div>
			<p>This code will expire in 10 minutes.</p>
			<p>If you didn't create an account, please ignore this email.</p>
		</div>
	`, code)

	return s.es.SendEmail(ctx, subject, toEmail, plainTextContent, htmlContent)
}
