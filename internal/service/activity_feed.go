package service

import (
	"context"
	"fmt"
	"sort"

	"go-adminstats/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

// ActivitySource 产出一段有界、已归一化的活动条目
type ActivitySource interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]model.ActivityItem, error)
}

// SourceFunc 以函数适配一个来源
type SourceFunc struct {
	SourceName string
	FetchFunc  func(ctx context.Context, limit int) ([]model.ActivityItem, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) Fetch(ctx context.Context, limit int) ([]model.ActivityItem, error) {
	return s.FetchFunc(ctx, limit)
}

// ActivityFeed 合并多个来源。Sources 的顺序即相同时间戳时的优先级。
type ActivityFeed struct {
	Sources   []ActivitySource
	Limit     int
	PerSource int
}

func NewActivityFeed(limit, perSource int, sources ...ActivitySource) *ActivityFeed {
	if limit <= 0 {
		limit = 10
	}
	if perSource <= 0 {
		perSource = limit
	}
	return &ActivityFeed{Sources: sources, Limit: limit, PerSource: perSource}
}

// Merge 并发拉取全部来源，按时间倒序取前 Limit 条；任一来源失败则整体失败
func (f *ActivityFeed) Merge(ctx context.Context) ([]model.ActivityItem, error) {
	batches := make([][]model.ActivityItem, len(f.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range f.Sources {
		i, src := i, src
		g.Go(func() error {
			items, err := src.Fetch(gctx, f.PerSource)
			if err != nil {
				return fmt.Errorf("activity source %s: %w", src.Name(), err)
			}
			if len(items) > f.PerSource {
				items = items[:f.PerSource]
			}
			batches[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]model.ActivityItem, 0, len(f.Sources)*f.PerSource)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	// 稳定排序：同一时间戳保留来源优先级与拉取顺序
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Timestamp.After(merged[b].Timestamp)
	})
	if len(merged) > f.Limit {
		merged = merged[:f.Limit]
	}
	return merged, nil
}
