package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/cache"
	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrActionsFrozen      = errors.New("account actions are frozen after too many failed login attempts")
	ErrInactive           = errors.New("user account is inactive")
)

const (
	maxFailedLogins   = 5
	failedLoginWindow = 15 * time.Minute
	freezeHours       = 24
	maxUserAgentLen   = 255
	loginHistoryLimit = 50
	minPasswordLen    = 8
)

// TokenIssuer signs access tokens for a principal.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

// VerificationSender delivers an email verification code.
type VerificationSender interface {
	SendVerification(ctx context.Context, email string) error
}

type UserService interface {
	Register(ctx context.Context, email, password, userType string) (User, error)
	Login(ctx context.Context, email, password, ip, userAgent string) (LoginResult, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	LoginHistory(ctx context.Context, userID int64) ([]LoginRecord, error)
	IsActionsFrozen(ctx context.Context, userID int64) (bool, error)
	SetActionsFreeze(ctx context.Context, userID int64, hours int) error
}

type userService struct {
	repo     UserRepository
	cache    cache.Store
	tokens   TokenIssuer
	verifier VerificationSender
	log      *zap.Logger
	now      func() time.Time
}

// NewUserService builds the account service. verifier may be nil, in which
// case registration sends no verification code.
func NewUserService(repo UserRepository, store cache.Store, tokens TokenIssuer, verifier VerificationSender, log *zap.Logger) UserService {
	return &userService{repo: repo, cache: store, tokens: tokens, verifier: verifier, log: log, now: time.Now}
}

func PrincipalFor(u User) auth.Principal {
	return auth.Principal{UserID: u.ID, UUID: u.UUID, Email: u.Email, UserType: u.UserType}
}

func (s *userService) Register(ctx context.Context, email, password, userType string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if userType == "" {
		userType = auth.UserTypeStartup
	}

	fields := validation.Errors{}
	if email == "" {
		fields.Add("email", validation.MsgRequired)
	}
	if len(password) < minPasswordLen {
		fields.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLen))
	}
	if !auth.ValidUserType(userType) {
		fields.Add("user_type", fmt.Sprintf("%q is not a valid choice.", userType))
	}
	if err := fields.Err(); err != nil {
		return User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, uuid.NewString(), email, string(hashBytes), userType)
	if err != nil {
		return User{}, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("user_type", u.UserType))

	if s.verifier != nil {
		if err := s.verifier.SendVerification(ctx, u.Email); err != nil {
			s.log.Warn("verification code not sent", zap.Int64("user_id", u.ID), zap.Error(err))
		}
	}
	return u, nil
}

func failedLoginKey(userID int64) string {
	return "login_failures:" + strconv.FormatInt(userID, 10)
}

func (s *userService) Login(ctx context.Context, email, password, ip, userAgent string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, hash, err := s.repo.GetUserAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if u.IsActionsFrozen(s.now()) {
		return LoginResult{}, ErrActionsFrozen
	}
	if !u.IsActive {
		return LoginResult{}, ErrInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if ferr := s.recordFailure(ctx, u); ferr != nil {
			return LoginResult{}, ferr
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.cache.Delete(ctx, failedLoginKey(u.ID)); err != nil {
		s.log.Warn("failed to reset login counter", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	if _, err := s.repo.RecordLogin(ctx, u.ID, ip, truncateRunes(userAgent, maxUserAgentLen)); err != nil {
		return LoginResult{}, fmt.Errorf("record login: %w", err)
	}

	token, err := s.tokens.Issue(PrincipalFor(u))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{AccessToken: token, User: u}, nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (s *userService) recordFailure(ctx context.Context, u User) error {
	n, err := s.cache.Incr(ctx, failedLoginKey(u.ID), failedLoginWindow)
	if err != nil {
		return fmt.Errorf("count failed login: %w", err)
	}
	if n < maxFailedLogins {
		return nil
	}

	if err := s.SetActionsFreeze(ctx, u.ID, freezeHours); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, failedLoginKey(u.ID)); err != nil {
		s.log.Warn("failed to reset login counter", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	s.log.Warn("account actions frozen after failed logins", zap.Int64("user_id", u.ID), zap.Int64("attempts", n))
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *userService) LoginHistory(ctx context.Context, userID int64) ([]LoginRecord, error) {
	return s.repo.ListLoginHistory(ctx, userID, loginHistoryLimit)
}

func (s *userService) IsActionsFrozen(ctx context.Context, userID int64) (bool, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsActionsFrozen(s.now()), nil
}

// SetActionsFreeze freezes the user's actions for hours from now; zero or
// less lifts the freeze.
func (s *userService) SetActionsFreeze(ctx context.Context, userID int64, hours int) error {
	var until *time.Time
	if hours > 0 {
		t := s.now().Add(time.Duration(hours) * time.Hour)
		until = &t
	}
	if err := s.repo.SetActionsFrozenUntil(ctx, userID, until); err != nil {
		return fmt.Errorf("set actions freeze: %w", err)
	}
	return nil
}
