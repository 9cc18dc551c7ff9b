package dao

import (
	"context"
	"time"

	"go-adminstats/internal/domain/model"

	"gorm.io/gorm"
)

type SessionDAO struct{ DB *gorm.DB }

func NewSessionDAO(db *gorm.DB) *SessionDAO { return &SessionDAO{DB: db} }

func (d *SessionDAO) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.Session{}).Where("expires_at > ?", now.UTC()).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
