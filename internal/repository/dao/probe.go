package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StoreProbe 测量一次数据库往返耗时（SELECT 1）
type StoreProbe struct{ DB *gorm.DB }

func NewStoreProbe(db *gorm.DB) *StoreProbe { return &StoreProbe{DB: db} }

func (p *StoreProbe) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	var one int
	if err := p.DB.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
