// internal/app/features/auditlog/types.go
package auditlog

import "time"

// listItem is one audit event as returned to its actor.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	TargetID   string            `json:"target_id,omitempty"`
	TargetName string            `json:"target_name,omitempty"` // resolved from UserID
	EntryID    string            `json:"entry_id,omitempty"`
	TeamID     string            `json:"team_id,omitempty"`
	IP         string            `json:"ip,omitempty"`
	Success    bool              `json:"success"`
	Failure    string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events     []listItem `json:"events"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
}
