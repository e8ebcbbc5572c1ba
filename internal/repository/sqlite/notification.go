package sqlite

import (
	"context"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
)

func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("notification is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO notifications (account_id, kind, title, message, is_read, offer_id, inquiry_id, review_id, created) VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		n.AccountID, n.Kind, n.Title, n.Message, n.OfferID, n.InquiryID, n.ReviewID, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListNotifications(ctx context.Context, accountID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT id, account_id, kind, title, message, is_read, offer_id, inquiry_id, review_id, created FROM notifications WHERE account_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created DESC`

	rows, err := r.conn.QueryRows(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var isRead int
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Title, &n.Message, &isRead, &n.OfferID, &n.InquiryID, &n.ReviewID, &n.Created); err != nil {
			return nil, err
		}
		n.IsRead = isRead != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips the read flag; scoped to the owning account so
// one account cannot touch another's notifications.
func (r *SQLiteRepo) MarkNotificationRead(ctx context.Context, id, accountID int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("notification %d for account %d: %w", id, accountID, models.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepo) MarkAllNotificationsRead(ctx context.Context, accountID int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE notifications SET is_read = 1 WHERE account_id = ? AND is_read = 0`, accountID)
	return err
}
