package admin

import (
	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/service"
	"go-adminstats/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditLogHandler struct{ d Dependencies }

func NewAuditLogHandler(d Dependencies) *AuditLogHandler { return &AuditLogHandler{d: d} }

// List GET /admin-audit-logs?userId=&action=&page=&limit=
// 未知参数忽略；page/limit 出现时必须为正整数
func (h *AuditLogHandler) List(c *gin.Context) {
	page, err := qPositiveInt(c, "page")
	if err != nil {
		writeError(c, h.d.Logger, service.ValidationErrorf("audit.list", "%v", err))
		return
	}
	limit, err := qPositiveInt(c, "limit")
	if err != nil {
		writeError(c, h.d.Logger, service.ValidationErrorf("audit.list", "%v", err))
		return
	}
	res, err := h.d.Audit.List(c.Request.Context(), service.AuditQuery{
		UserID: qStr(c, "userId"),
		Action: qStr(c, "action"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, h.d.Logger, err)
		return
	}
	response.OK(c, res)
}

// Actions GET /admin-audit-logs/actions?userId=&action=
func (h *AuditLogHandler) Actions(c *gin.Context) {
	rows, err := h.d.Audit.Distribution(c.Request.Context(), model.AuditFilter{
		UserID: qStr(c, "userId"),
		Action: qStr(c, "action"),
	})
	if err != nil {
		writeError(c, h.d.Logger, err)
		return
	}
	response.OK(c, gin.H{"actions": rows})
}
