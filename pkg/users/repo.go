package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("a user is already registered with this e-mail address")
)

type UserRepository interface {
	CreateUser(ctx context.Context, uuid, email, passwordHash, userType string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// Auth helpers
	GetUserAuthByEmail(ctx context.Context, email string) (User, string, error)
	UpdateVerifiedAtByEmail(ctx context.Context, email string, ts time.Time) error
	SetActionsFrozenUntil(ctx context.Context, id int64, until *time.Time) error
	RecordLogin(ctx context.Context, userID int64, ip, userAgent string) (LoginRecord, error)
	ListLoginHistory(ctx context.Context, userID int64, limit int) ([]LoginRecord, error)
}

type postgresUserRepository struct {
	db db.DBTX
}

func NewPostgresUserRepository(conn db.DBTX) UserRepository {
	return &postgresUserRepository{db: conn}
}

const userColumns = `id, uuid, email, user_type, is_active, verified_at, actions_frozen_until, created_at, updated_at`

func scanUser(row pgx.Row, extra ...any) (User, error) {
	var u User
	dest := []any{&u.ID, &u.UUID, &u.Email, &u.UserType, &u.IsActive, &u.VerifiedAt, &u.ActionsFrozenUntil, &u.CreatedAt, &u.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, uuid, email, passwordHash, userType string) (User, error) {
	query := `INSERT INTO users (uuid, email, password_hash, user_type)
              VALUES ($1, $2, $3, $4)
              RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, uuid, email, passwordHash, userType))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *postgresUserRepository) GetUserAuthByEmail(ctx context.Context, email string) (User, string, error) {
	var hash string
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, email), &hash)
	if err != nil {
		return User{}, "", err
	}
	return u, hash, nil
}

func (r *postgresUserRepository) UpdateVerifiedAtByEmail(ctx context.Context, email string, ts time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET verified_at = $1, updated_at = NOW() WHERE email = $2`, ts, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) SetActionsFrozenUntil(ctx context.Context, id int64, until *time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET actions_frozen_until = $1, updated_at = NOW() WHERE id = $2`, until, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) RecordLogin(ctx context.Context, userID int64, ip, userAgent string) (LoginRecord, error) {
	query := `INSERT INTO login_history (user_id, ip, user_agent)
              VALUES ($1, NULLIF($2, ''), $3)
              RETURNING id, user_id, COALESCE(ip, ''), user_agent, timestamp`
	var rec LoginRecord
	err := r.db.QueryRow(ctx, query, userID, ip, userAgent).
		Scan(&rec.ID, &rec.UserID, &rec.IP, &rec.UserAgent, &rec.Timestamp)
	if err != nil {
		return LoginRecord{}, err
	}
	rec.describeAgent()
	return rec, nil
}

func (r *postgresUserRepository) ListLoginHistory(ctx context.Context, userID int64, limit int) ([]LoginRecord, error) {
	query := `SELECT id, user_id, COALESCE(ip, ''), user_agent, timestamp
              FROM login_history
              WHERE user_id = $1
              ORDER BY timestamp DESC, id DESC
              LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]LoginRecord, 0)
	for rows.Next() {
		var rec LoginRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.IP, &rec.UserAgent, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.describeAgent()
		list = append(list, rec)
	}
	return list, rows.Err()
}
