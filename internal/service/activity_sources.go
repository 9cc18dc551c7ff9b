package service

import (
	"context"
	"fmt"

	"go-adminstats/internal/domain/model"
)

const (
	ActivityTypeAudit   = "audit"
	ActivityTypePost    = "post"
	ActivityTypeComment = "comment"
	ActivityTypeSignup  = "user_signup"
)

// AuditActivitySource 审计日志；details 不解析，只用 action 与 userId 组装描述
func AuditActivitySource(store AuditLogStore) ActivitySource {
	return SourceFunc{SourceName: "audit", FetchFunc: func(ctx context.Context, limit int) ([]model.ActivityItem, error) {
		logs, err := store.Recent(ctx, limit)
		if err != nil {
			return nil, err
		}
		items := make([]model.ActivityItem, 0, len(logs))
		for _, l := range logs {
			items = append(items, model.ActivityItem{
				Type:        ActivityTypeAudit,
				Description: fmt.Sprintf("%s by %s", l.Action, l.UserID),
				Timestamp:   l.CreatedAt,
				Icon:        "shield",
				Color:       "gray",
			})
		}
		return items, nil
	}}
}

func PostActivitySource(store ContentStore) ActivitySource {
	return SourceFunc{SourceName: "posts", FetchFunc: func(ctx context.Context, limit int) ([]model.ActivityItem, error) {
		posts, err := store.RecentPosts(ctx, limit)
		if err != nil {
			return nil, err
		}
		items := make([]model.ActivityItem, 0, len(posts))
		for _, p := range posts {
			desc := fmt.Sprintf("New post %q", p.Title)
			if !p.Published {
				desc = fmt.Sprintf("New draft %q", p.Title)
			}
			items = append(items, model.ActivityItem{
				Type:        ActivityTypePost,
				Description: desc,
				Timestamp:   p.CreatedAt,
				Icon:        "file-text",
				Color:       "blue",
			})
		}
		return items, nil
	}}
}

func CommentActivitySource(store ContentStore) ActivitySource {
	return SourceFunc{SourceName: "comments", FetchFunc: func(ctx context.Context, limit int) ([]model.ActivityItem, error) {
		comments, err := store.RecentComments(ctx, limit)
		if err != nil {
			return nil, err
		}
		items := make([]model.ActivityItem, 0, len(comments))
		for _, c := range comments {
			items = append(items, model.ActivityItem{
				Type:        ActivityTypeComment,
				Description: fmt.Sprintf("New comment on post %s", c.PostID),
				Timestamp:   c.CreatedAt,
				Icon:        "message-square",
				Color:       "green",
			})
		}
		return items, nil
	}}
}

func SignupActivitySource(store UserStore) ActivitySource {
	return SourceFunc{SourceName: "signups", FetchFunc: func(ctx context.Context, limit int) ([]model.ActivityItem, error) {
		users, err := store.RecentSignups(ctx, limit)
		if err != nil {
			return nil, err
		}
		items := make([]model.ActivityItem, 0, len(users))
		for _, u := range users {
			name := u.Name
			if name == "" {
				name = u.Email
			}
			items = append(items, model.ActivityItem{
				Type:        ActivityTypeSignup,
				Description: fmt.Sprintf("%s signed up", name),
				Timestamp:   u.CreatedAt,
				Icon:        "user-plus",
				Color:       "purple",
			})
		}
		return items, nil
	}}
}
