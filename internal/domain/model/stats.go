package model

import "time"

// AdminStats 一次仪表盘快照（尽力而为的时间点视图，非事务隔离）
type AdminStats struct {
	Users          UserStats      `json:"users"`
	Content        ContentStats   `json:"content"`
	Growth         []GrowthPoint  `json:"growth"`
	RecentActivity []ActivityItem `json:"recentActivity"`
	SystemHealth   SystemHealth   `json:"systemHealth"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

type UserStats struct {
	Total          int64 `json:"total"`
	Active         int64 `json:"active"`
	Verified       int64 `json:"verified"`
	Admins         int64 `json:"admins"`
	ActiveSessions int64 `json:"activeSessions"`
}

type ContentStats struct {
	Posts          int64 `json:"posts"`
	PublishedPosts int64 `json:"publishedPosts"`
	Comments       int64 `json:"comments"`
	Categories     int64 `json:"categories"`
	RecentPosts    int64 `json:"recentPosts"`
	RecentComments int64 `json:"recentComments"`
}

// GrowthPoint Date 为 UTC 日期 YYYY-MM-DD
type GrowthPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DailyCount 存储层按 UTC 日聚合后的行
type DailyCount struct {
	Day   time.Time
	Count int64
}

type ActivityItem struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

// Severity 数值越大越差，用于取两路信号中较差者
func (s HealthStatus) Severity() int {
	switch s {
	case HealthDown:
		return 2
	case HealthDegraded:
		return 1
	default:
		return 0
	}
}

func WorseStatus(a, b HealthStatus) HealthStatus {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

type HealthMetric struct {
	Status         HealthStatus `json:"status"`
	ResponseTimeMs float64      `json:"responseTimeMs"`
	Percentage     float64      `json:"percentage"`
}

type SystemHealth struct {
	Status    HealthStatus `json:"status"`
	Database  HealthMetric `json:"database"`
	API       HealthMetric `json:"api"`
	ErrorRate HealthMetric `json:"errorRate"`
}
