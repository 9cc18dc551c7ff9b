package service

import (
	"context"
	"time"

	"go-adminstats/internal/domain/model"
	"go-adminstats/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type StatsOptions struct {
	Timeout          time.Duration
	GrowthWindowDays int
	RecentWindowDays int
	SignalWindow     time.Duration
}

// StatsService 仪表盘快照：一次扇出、一个截止时间、全有或全无
type StatsService struct {
	Users    UserStore
	Sessions SessionStore
	Content  ContentStore
	Probe    StoreProber
	Signals  SignalReader
	Feed     *ActivityFeed
	Scorer   *HealthScorer
	Opts     StatsOptions

	now func() time.Time
}

func NewStatsService(users UserStore, sessions SessionStore, content ContentStore, probe StoreProber,
	signals SignalReader, feed *ActivityFeed, scorer *HealthScorer, opts StatsOptions) *StatsService {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.GrowthWindowDays <= 0 {
		opts.GrowthWindowDays = 30
	}
	if opts.RecentWindowDays <= 0 {
		opts.RecentWindowDays = 7
	}
	if opts.SignalWindow <= 0 {
		opts.SignalWindow = 5 * time.Minute
	}
	return &StatsService{
		Users: users, Sessions: sessions, Content: content, Probe: probe,
		Signals: signals, Feed: feed, Scorer: scorer, Opts: opts,
		now: time.Now,
	}
}

func (s *StatsService) tracer() trace.Tracer { return otel.Tracer("service.stats") }

// Snapshot 任一子查询失败或超时即整体失败，其余子查询随 ctx 取消
func (s *StatsService) Snapshot(ctx context.Context) (*model.AdminStats, error) {
	start := time.Now()
	defer func() { metrics.StatsSnapshotDuration.Observe(time.Since(start).Seconds()) }()

	ctx, span := s.tracer().Start(ctx, "StatsService.Snapshot")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.Opts.Timeout)
	defer cancel()

	now := s.now().UTC()
	recentFrom, _ := TrailingWindow(now, s.Opts.RecentWindowDays)
	growthFrom, growthTo := TrailingWindow(now, s.Opts.GrowthWindowDays)

	var (
		out          model.AdminStats
		signups      []model.DailyCount
		storeLatency time.Duration
		signal       SignalWindow
	)
	g, gctx := errgroup.WithContext(ctx)
	s.count(gctx, g, "users_total", &out.Users.Total, s.Users.CountTotal)
	s.count(gctx, g, "users_active", &out.Users.Active, s.Users.CountActive)
	s.count(gctx, g, "users_verified", &out.Users.Verified, s.Users.CountVerified)
	s.count(gctx, g, "users_admins", &out.Users.Admins, s.Users.CountAdmins)
	s.count(gctx, g, "sessions_active", &out.Users.ActiveSessions, func(ctx context.Context) (int64, error) {
		return s.Sessions.CountActive(ctx, now)
	})
	s.count(gctx, g, "posts", &out.Content.Posts, s.Content.CountPosts)
	s.count(gctx, g, "posts_published", &out.Content.PublishedPosts, s.Content.CountPublishedPosts)
	s.count(gctx, g, "comments", &out.Content.Comments, s.Content.CountComments)
	s.count(gctx, g, "categories", &out.Content.Categories, s.Content.CountCategories)
	s.count(gctx, g, "posts_recent", &out.Content.RecentPosts, func(ctx context.Context) (int64, error) {
		return s.Content.CountPostsSince(ctx, recentFrom)
	})
	s.count(gctx, g, "comments_recent", &out.Content.RecentComments, func(ctx context.Context) (int64, error) {
		return s.Content.CountCommentsSince(ctx, recentFrom)
	})
	s.run(gctx, g, "growth", func(ctx context.Context) (err error) {
		signups, err = s.Users.CountCreatedByDay(ctx, growthFrom, growthTo)
		return err
	})
	s.run(gctx, g, "activity", func(ctx context.Context) (err error) {
		out.RecentActivity, err = s.Feed.Merge(ctx)
		return err
	})
	s.run(gctx, g, "store_probe", func(ctx context.Context) (err error) {
		storeLatency, err = s.Probe.Ping(ctx)
		return err
	})
	s.run(gctx, g, "api_signals", func(ctx context.Context) (err error) {
		signal, err = s.Signals.Window(ctx, s.Opts.SignalWindow)
		return err
	})

	if err := g.Wait(); err != nil {
		err = classify(ctx, "stats.snapshot", err)
		metrics.StatsFailures.WithLabelValues("stats_snapshot", string(KindOf(err))).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out.Growth = BuildGrowthSeries(now, s.Opts.GrowthWindowDays, signups)
	if out.RecentActivity == nil {
		out.RecentActivity = []model.ActivityItem{}
	}
	out.SystemHealth = s.Scorer.Score(HealthMeasurements{
		StoreLatency: storeLatency,
		APILatency:   signal.AvgLatency,
		ErrorRatio:   signal.ErrorRatio(),
	})
	out.GeneratedAt = now
	return &out, nil
}

// run 每个子任务独立 span 与耗时直方图
func (s *StatsService) run(ctx context.Context, g *errgroup.Group, task string, fn func(context.Context) error) {
	g.Go(func() error {
		ctx, span := s.tracer().Start(ctx, "stats."+task, trace.WithAttributes(attribute.String("stats.task", task)))
		defer span.End()
		start := time.Now()
		err := fn(ctx)
		metrics.StatsTaskDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}

func (s *StatsService) count(ctx context.Context, g *errgroup.Group, task string, dst *int64, fn func(context.Context) (int64, error)) {
	s.run(ctx, g, task, func(ctx context.Context) error {
		n, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}
