package handler

import (
	adminh "go-adminstats/internal/server/http/handler/admin"
)

// HandlerSet 聚合业务 handler，供 router 使用
type HandlerSet struct {
	Stats    *adminh.StatsHandler
	AuditLog *adminh.AuditLogHandler
}

func NewHandlerSet(ad adminh.Dependencies) *HandlerSet {
	return &HandlerSet{
		Stats:    adminh.NewStatsHandler(ad),
		AuditLog: adminh.NewAuditLogHandler(ad),
	}
}
