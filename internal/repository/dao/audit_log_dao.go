package dao

import (
	"context"
	"fmt"
	"math"

	"go-adminstats/internal/domain/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogDAO struct{ DB *gorm.DB }

func NewAuditLogDAO(db *gorm.DB) *AuditLogDAO { return &AuditLogDAO{DB: db} }

// ValidateEntry Append 前的必填校验，内存实现共用
func ValidateEntry(e *model.AuditLog) error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidArgument)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id required", ErrInvalidArgument)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action required", ErrInvalidArgument)
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at required", ErrInvalidArgument)
	}
	return nil
}

// ValidatePage 与 Query 的分页约束保持一致
func ValidatePage(page, limit int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must >= 1, got %d", ErrInvalidArgument, page)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must > 0, got %d", ErrInvalidArgument, limit)
	}
	return nil
}

// PageOffset (page-1)*limit；乘积溢出时 ok=false，此页必然越过结果集。
// 调用前须已通过 ValidatePage。
func PageOffset(page, limit int) (offset int, ok bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

func (d *AuditLogDAO) Append(ctx context.Context, e *model.AuditLog) error {
	if err := ValidateEntry(e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return d.DB.WithContext(ctx).Create(e).Error
}

func (d *AuditLogDAO) scoped(ctx context.Context, f model.AuditFilter) *gorm.DB {
	q := d.DB.WithContext(ctx).Model(&model.AuditLog{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}
	return q
}

func (d *AuditLogDAO) Count(ctx context.Context, f model.AuditFilter) (int64, error) {
	var total int64
	if err := d.scoped(ctx, f).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Query created_at 倒序；同一时间戳按插入序（seq 升序）
func (d *AuditLogDAO) Query(ctx context.Context, f model.AuditFilter, page, limit int) ([]model.AuditLog, error) {
	if err := ValidatePage(page, limit); err != nil {
		return nil, err
	}
	list := make([]model.AuditLog, 0, limit)
	offset, ok := PageOffset(page, limit)
	if !ok {
		return list, nil
	}
	err := d.scoped(ctx, f).
		Order("created_at DESC").Order("seq ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (d *AuditLogDAO) GroupByAction(ctx context.Context, f model.AuditFilter) ([]model.ActionDistributionRow, error) {
	rows := make([]model.ActionDistributionRow, 0)
	err := d.scoped(ctx, f).
		Select("action, COUNT(*) AS count").
		Group("action").
		Order("count DESC").Order("action ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *AuditLogDAO) Recent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	return d.Query(ctx, model.AuditFilter{}, 1, limit)
}
