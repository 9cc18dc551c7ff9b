package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志条目，只追加、不修改不删除。
// Seq 为库内插入序号，用于相同 created_at 时保持插入顺序，不对外输出。
// Details 为不透明的结构化载荷，业务层只透传。
type AuditLog struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	Seq       int64             `gorm:"column:seq;type:bigserial;<-:false;uniqueIndex" json:"-"`
	UserID    string            `gorm:"column:user_id;size:64;not null;index:idx_audit_user_created,priority:1" json:"userId"`
	Action    string            `gorm:"column:action;size:100;not null;index" json:"action"`
	IP        *string           `gorm:"column:ip;size:64" json:"ip,omitempty"`
	Details   datatypes.JSONMap `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;not null;index;index:idx_audit_user_created,priority:2" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AuditFilter nil 字段表示不约束，多个字段 AND
type AuditFilter struct {
	UserID *string
	Action *string
}

// Matches 内存实现与测试共用的过滤语义
func (f AuditFilter) Matches(e *AuditLog) bool {
	if f.UserID != nil && e.UserID != *f.UserID {
		return false
	}
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	return true
}

type ActionDistributionRow struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}
