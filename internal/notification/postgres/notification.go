package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const notificationColumns = "id, recipient, subject, message, is_read, created_at"

// NotificationRepository implements notification.Backend with sqlx. Queries are written with
// ? placeholders and rebound for the connection's driver.
type NotificationRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]*notification.Notification, error) {
	query := r.db.Rebind("SELECT " + notificationColumns + " FROM notifications WHERE recipient = ? ORDER BY created_at ASC")

	var rows []notificationDatamodel.Notification
	if err := r.db.SelectContext(ctx, &rows, query, recipient); err != nil {
		return nil, err
	}
	out := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, notification.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *NotificationRepository) Send(ctx context.Context, dto notification.SendNotificationDTO) (*notification.Notification, error) {
	n := notification.NewNotification("notif-"+uuid.NewString(), dto, r.now())
	query := `INSERT INTO notifications (id, recipient, subject, message, is_read, created_at)
		VALUES (:id, :recipient, :subject, :message, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification.ToDataModel(n)); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) (*notification.Notification, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var row notificationDatamodel.Notification
	query := tx.Rebind("SELECT " + notificationColumns + " FROM notifications WHERE id = ?")
	if err := tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrNotificationNotFound
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE notifications SET is_read = ? WHERE id = ?"), true, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	row.Read = true
	return notification.FromDataModel(&row), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipient string) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM notifications WHERE recipient = ? AND is_read = ?")
	if err := r.db.GetContext(ctx, &count, query, recipient, false); err != nil {
		return 0, err
	}
	return count, nil
}
