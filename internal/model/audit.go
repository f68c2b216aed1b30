package model

import "time"

// Audit levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit categories
const (
	AuditCategoryEvent        = "event"
	AuditCategoryCategory     = "category"
	AuditCategoryAdmin        = "admin"
	AuditCategorySubscription = "subscription"
	AuditCategoryReminder     = "reminder"
	AuditCategorySystem       = "system"
)

// AuditEntry is a persisted audit-log record. Operator mutations and WARN+
// application logs both land here.
type AuditEntry struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    string // Slack user ID when attributable, empty otherwise
	Metadata  string // JSON string
	CreatedAt time.Time
}
