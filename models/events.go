package models

import "time"

// Change-notification operations, mirroring the store's event vocabulary.
const (
	ChangeOpInsert = "INSERT"
	ChangeOpUpdate = "UPDATE"
	ChangeOpDelete = "DELETE"
)

// ChangeEvent describes a row-level change in one of the shared tables. It is
// a refresh trigger only: consumers must re-fetch through their normal query
// path rather than trust any payload attached to the event.
type ChangeEvent struct {
	Table     string `json:"table"`     // "services" or "service_fill_requests"
	Operation string `json:"operation"` // INSERT | UPDATE | DELETE
	RowID     string `json:"rowId,omitempty"`
}

// Data renders the event as FCM data-message fields (string values only).
func (e ChangeEvent) Data() map[string]string {
	return map[string]string{
		"table":     e.Table,
		"operation": e.Operation,
		"rowId":     e.RowID,
	}
}

// ReminderPayload is the asynq task body for scheduled-service reminders.
type ReminderPayload struct {
	ServiceID string    `json:"serviceId"`
	Target    string    `json:"target"` // "user" or "provider"
	TargetID  string    `json:"targetId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	FireAt    time.Time `json:"fireAt"`
}
