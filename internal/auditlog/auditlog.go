// Package auditlog renders the append-only activity trail. Logs are
// consumed for display only; the console never creates or mutates them.
package auditlog

import "time"

type AuditLog struct {
	ID         int64     `json:"id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	User       string    `json:"user"`
	ChangeType string    `json:"change_type"`
	RecordType string    `json:"record_type"`
	RecordID   int64     `json:"record_id"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
