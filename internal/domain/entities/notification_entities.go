package entities

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by deposit reconciliation.
const (
	NotificationTypeDepositPending   = "deposit_pending"
	NotificationTypeDepositConfirmed = "deposit_confirmed"
	NotificationTypeDepositFailed    = "deposit_failed"
)

// Notification is a row in notifications.
type Notification struct {
	ID               uuid.UUID `db:"id" json:"id"`
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	Title            string    `db:"title" json:"title"`
	Message          string    `db:"message" json:"message"`
	NotificationType string    `db:"notification_type" json:"notification_type"`
	IsRead           bool      `db:"is_read" json:"is_read"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
