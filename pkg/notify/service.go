package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/metrics"
)

const emailTimeout = 10 * time.Second

type EmailSender interface {
	SendEmail(ctx context.Context, subject, toEmail, plainTextContent, htmlContent string) error
	Enabled() bool
}

type NotificationService interface {
	// Publish never fails the caller: delivery problems are logged.
	Publish(ctx context.Context, userID int64, kind, title, body string, payload any)
	List(ctx context.Context, p auth.Principal, page, limit int) (Page, error)
	MarkRead(ctx context.Context, p auth.Principal, ids ...int64) error
	Status(ctx context.Context, p auth.Principal) (Status, error)
	Touch(ctx context.Context, userID int64)
}

type notificationService struct {
	repo    NotificationRepository
	hub     *Hub
	email   EmailSender
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, email EmailSender, m *metrics.Metrics, log *zap.Logger) NotificationService {
	return &notificationService{repo: repo, hub: hub, email: email, metrics: m, log: log}
}

func (s *notificationService) Publish(ctx context.Context, userID int64, kind, title, body string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil || payload == nil {
		raw = json.RawMessage(`{}`)
	}
	// Delivery outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	n, err := s.repo.Create(ctx, userID, kind, title, body, raw)
	if err != nil {
		s.log.Error("notification not stored", zap.Int64("user_id", userID), zap.String("kind", kind), zap.Error(err))
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		if !s.hub.IsOnline(userID) {
			return nil
		}
		if err := s.hub.SendToUser(userID, Event{EventType: EventNotification, Notification: n}); err != nil {
			s.log.Warn("live notification not delivered", zap.Int64("user_id", userID), zap.Error(err))
			return nil
		}
		s.metrics.IncNotification("websocket")
		return nil
	})
	g.Go(func() error {
		if s.email == nil || !s.email.Enabled() {
			return nil
		}
		to, err := s.repo.RecipientEmail(ctx, userID)
		if err != nil || to == "" {
			if err != nil {
				s.log.Warn("notification recipient lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			}
			return nil
		}
		sendCtx, cancel := context.WithTimeout(ctx, emailTimeout)
		defer cancel()
		htmlBody := fmt.Sprintf("<p><strong>%s</strong></p><p>%s</p>", html.EscapeString(title), html.EscapeString(body))
		if err := s.email.SendEmail(sendCtx, title, to, body, htmlBody); err != nil {
			s.log.Warn("notification email failed", zap.Int64("user_id", userID), zap.Error(err))
			return nil
		}
		s.metrics.IncNotification("email")
		return nil
	})
	_ = g.Wait()

	s.log.Debug("notification published", zap.Int64("user_id", userID), zap.String("kind", kind), zap.Int64("notification_id", n.ID))
}

func (s *notificationService) List(ctx context.Context, p auth.Principal, page, limit int) (Page, error) {
	list, err := s.repo.List(ctx, p.UserID, limit, (page-1)*limit)
	if err != nil {
		return Page{}, fmt.Errorf("list notifications: %w", err)
	}
	total, unread, err := s.repo.Count(ctx, p.UserID)
	if err != nil {
		return Page{}, fmt.Errorf("count notifications: %w", err)
	}
	return Page{Results: list, Count: total, Unread: unread, Page: page, Limit: limit}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, p auth.Principal, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.repo.MarkRead(ctx, p.UserID, ids)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) Status(ctx context.Context, p auth.Principal) (Status, error) {
	_, unread, err := s.repo.Count(ctx, p.UserID)
	if err != nil {
		return Status{}, fmt.Errorf("count notifications: %w", err)
	}
	return Status{Online: s.hub.IsOnline(p.UserID), Unread: unread}, nil
}

// Touch records connection activity; failures are only logged.
func (s *notificationService) Touch(ctx context.Context, userID int64) {
	if err := s.repo.UpdateLastActive(ctx, userID, time.Now()); err != nil {
		s.log.Warn("last_active_at update failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
