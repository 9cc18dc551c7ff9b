package dao

import (
	"context"
	"errors"
	"time"

	"go-adminstats/internal/domain/model"

	"gorm.io/gorm"
)

type UserDAO struct{ DB *gorm.DB }

func NewUserDAO(db *gorm.DB) *UserDAO { return &UserDAO{DB: db} }

func (d *UserDAO) count(ctx context.Context, where string, args ...interface{}) (int64, error) {
	var n int64
	q := d.DB.WithContext(ctx).Model(&model.User{})
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (d *UserDAO) CountTotal(ctx context.Context) (int64, error) { return d.count(ctx, "") }

func (d *UserDAO) CountActive(ctx context.Context) (int64, error) {
	return d.count(ctx, "is_active = ?", true)
}

func (d *UserDAO) CountVerified(ctx context.Context) (int64, error) {
	return d.count(ctx, "email_verified = ?", true)
}

func (d *UserDAO) CountAdmins(ctx context.Context) (int64, error) {
	return d.count(ctx, "role = ?", model.RoleAdmin)
}

// CountCreatedByDay 按 UTC 日聚合 [from, to) 内新注册用户
func (d *UserDAO) CountCreatedByDay(ctx context.Context, from, to time.Time) ([]model.DailyCount, error) {
	return countByDay(ctx, d.DB, &model.User{}, from, to)
}

// RecentSignups 最新注册用户（活动流）
func (d *UserDAO) RecentSignups(ctx context.Context, limit int) ([]model.User, error) {
	list := make([]model.User, 0, limit)
	if err := d.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// IsAdmin 供鉴权中间件使用；用户不存在视为非管理员
func (d *UserDAO) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var u model.User
	err := d.DB.WithContext(ctx).Select("role").Where("id = ?", userID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == model.RoleAdmin, nil
}

type dayRow struct {
	Day   time.Time
	Count int64
}

func countByDay(ctx context.Context, db *gorm.DB, m interface{}, from, to time.Time) ([]model.DailyCount, error) {
	var rows []dayRow
	err := db.WithContext(ctx).Model(m).
		Select("date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Group("day").Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.DailyCount{Day: r.Day, Count: r.Count})
	}
	return out, nil
}
