package otp

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var ErrOTPNotFound = errors.New("no pending verification code for this email")

type OTPRepository interface {
	CreateOTP(ctx context.Context, email, code string, expiresAt time.Time) (OTP, error)
	GetLatestPendingOTP(ctx context.Context, email string) (OTP, error)
	MarkOTPAsVerified(ctx context.Context, id int64) error
	CountOTPsSince(ctx context.Context, email string, since time.Time) (int, error)
	DeleteExpiredOTPs(ctx context.Context) error
}

type postgresOTPRepository struct {
	db db.DBTX
}

func NewPostgresOTPRepository(conn db.DBTX) OTPRepository {
	return &postgresOTPRepository{db: conn}
}

func (r *postgresOTPRepository) CreateOTP(ctx context.Context, email, code string, expiresAt time.Time) (OTP, error) {
	query := `
		INSERT INTO otps (email, code, expires_at, verified, created_at)
		VALUES ($1, $2, $3, false, NOW())
		RETURNING id, email, code, expires_at, verified, created_at
	`

	var otp OTP
	err := r.db.QueryRow(ctx, query, email, code, expiresAt).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.Verified,
		&otp.CreatedAt,
	)
	return otp, err
}

func (r *postgresOTPRepository) GetLatestPendingOTP(ctx context.Context, email string) (OTP, error) {
	query := `
		SELECT id, email, code, expires_at, verified, created_at
		FROM otps
		WHERE email = $1 AND verified = false
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var otp OTP
	err := r.db.QueryRow(ctx, query, email).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.Verified,
		&otp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return OTP{}, ErrOTPNotFound
	}
	return otp, err
}

func (r *postgresOTPRepository) MarkOTPAsVerified(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE otps SET verified = true WHERE id = $1`, id)
	return err
}

func (r *postgresOTPRepository) CountOTPsSince(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM otps WHERE email = $1 AND created_at >= $2`, email, since).Scan(&n)
	return n, err
}

func (r *postgresOTPRepository) DeleteExpiredOTPs(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otps WHERE expires_at < NOW() AND verified = false`)
	return err
}
