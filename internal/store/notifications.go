package store

import (
	"context"
	"fmt"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

// AddNotification creates a notification for a user. Callers that are part
// of a larger write pass their transaction-bound Store.
func (s *Store) AddNotification(ctx context.Context, n *models.Notification) error {
	res, err := s.ext.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, message, link, is_read) VALUES (?, ?, ?, ?, 0)",
		n.UserID, n.Title, n.Message, n.Link)
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// UserNotifications returns the newest 50 notifications, unread first.
func (s *Store) UserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := `
		SELECT id, user_id, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC, id DESC
		LIMIT 50`
	if err := sqlx.SelectContext(ctx, s.ext, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead only touches the row when it belongs to userID.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	return expectOne(s.ext.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?", id, userID))
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.ext.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UnreadNotificationCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.ext, &n, "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0", userID)
	return n, err
}
