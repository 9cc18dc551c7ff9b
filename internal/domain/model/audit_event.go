package model

import "time"

// AuditEvent kafka 上的审计事件载荷（JSON）
type AuditEvent struct {
	ID        string                 `json:"id,omitempty"`
	UserID    string                 `json:"user_id"`
	Action    string                 `json:"action"`
	IP        string                 `json:"ip,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func (e AuditEvent) ToAuditLog() *AuditLog {
	l := &AuditLog{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
	if e.IP != "" {
		ip := e.IP
		l.IP = &ip
	}
	return l
}
