package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aquilesbailo123/Raven-backend/pkg/db"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, userID int64, kind, title, body string, payload json.RawMessage) (Notification, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, userID int64) (total, unread int64, err error)
	MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error)
	RecipientEmail(ctx context.Context, userID int64) (string, error)
	UpdateLastActive(ctx context.Context, userID int64, at time.Time) error
}

type postgresNotificationRepository struct {
	db db.DBTX
}

func NewPostgresNotificationRepository(conn db.DBTX) NotificationRepository {
	return &postgresNotificationRepository{db: conn}
}

const notificationColumns = `id, user_id, kind, title, body, payload, read_at, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Payload, &n.ReadAt, &n.CreatedAt)
	return n, err
}

func (r *postgresNotificationRepository) Create(ctx context.Context, userID int64, kind, title, body string, payload json.RawMessage) (Notification, error) {
	return scanNotification(r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, title, body, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns, userID, kind, title, body, payload))
}

func (r *postgresNotificationRepository) List(ctx context.Context, userID int64, limit, offset int) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *postgresNotificationRepository) Count(ctx context.Context, userID int64) (int64, int64, error) {
	var total, unread int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE read_at IS NULL)
		FROM notifications WHERE user_id = $1`, userID).Scan(&total, &unread)
	return total, unread, err
}

// MarkRead stamps the user's notifications among ids, keeping earlier read
// times, and returns how many belong to the user.
func (r *postgresNotificationRepository) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresNotificationRepository) RecipientEmail(ctx context.Context, userID int64) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1 AND is_active`, userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (r *postgresNotificationRepository) UpdateLastActive(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_active_at = $2 WHERE id = $1`, userID, at)
	return err
}
