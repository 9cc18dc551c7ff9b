package admin

import (
	"go-adminstats/internal/logging"
	"go-adminstats/internal/service"
)

// Dependencies admin 子包最小依赖集合
type Dependencies struct {
	Stats  *service.StatsService
	Audit  *service.AuditQueryService
	Logger *logging.Logger
}
