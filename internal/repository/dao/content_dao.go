package dao

import (
	"context"
	"time"

	"go-adminstats/internal/domain/model"

	"gorm.io/gorm"
)

type ContentDAO struct{ DB *gorm.DB }

func NewContentDAO(db *gorm.DB) *ContentDAO { return &ContentDAO{DB: db} }

func (d *ContentDAO) countOf(ctx context.Context, m interface{}, where string, args ...interface{}) (int64, error) {
	var n int64
	q := d.DB.WithContext(ctx).Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (d *ContentDAO) CountPosts(ctx context.Context) (int64, error) {
	return d.countOf(ctx, &model.Post{}, "")
}

func (d *ContentDAO) CountPublishedPosts(ctx context.Context) (int64, error) {
	return d.countOf(ctx, &model.Post{}, "published = ?", true)
}

func (d *ContentDAO) CountComments(ctx context.Context) (int64, error) {
	return d.countOf(ctx, &model.Comment{}, "")
}

func (d *ContentDAO) CountCategories(ctx context.Context) (int64, error) {
	return d.countOf(ctx, &model.Category{}, "")
}

func (d *ContentDAO) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	return d.countOf(ctx, &model.Post{}, "created_at >= ?", since.UTC())
}

func (d *ContentDAO) CountCommentsSince(ctx context.Context, since time.Time) (int64, error) {
	return d.countOf(ctx, &model.Comment{}, "created_at >= ?", since.UTC())
}

func (d *ContentDAO) RecentPosts(ctx context.Context, limit int) ([]model.Post, error) {
	list := make([]model.Post, 0, limit)
	if err := d.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *ContentDAO) RecentComments(ctx context.Context, limit int) ([]model.Comment, error) {
	list := make([]model.Comment, 0, limit)
	if err := d.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
