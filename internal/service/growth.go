package service

import (
	"time"

	"go-adminstats/internal/domain/model"
)

const dateLayout = "2006-01-02"

// TruncateDay 截断到 UTC 日
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TrailingWindow 以 now 所在 UTC 日为最后一天、共 days 天的窗口 [start, end)。
// end 为次日零点，所以“今天”整天都落在窗口内。
func TrailingWindow(now time.Time, days int) (start, end time.Time) {
	if days < 1 {
		days = 1
	}
	today := TruncateDay(now)
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}

// BuildGrowthSeries 生成 days 个连续的日桶（升序，无数据的日子为 0），
// 将 rows 按其 UTC 日累加到对应桶，窗口外的行忽略。
// 结果长度恒为 days，桶计数之和等于窗口内实体数。
func BuildGrowthSeries(now time.Time, days int, rows []model.DailyCount) []model.GrowthPoint {
	if days < 1 {
		days = 1
	}
	start, _ := TrailingWindow(now, days)
	series := make([]model.GrowthPoint, days)
	for i := range series {
		series[i] = model.GrowthPoint{Date: start.AddDate(0, 0, i).Format(dateLayout)}
	}
	for _, r := range rows {
		day := TruncateDay(r.Day)
		idx := int(day.Sub(start).Hours() / 24)
		if day.Before(start) || idx >= days {
			continue
		}
		series[idx].Count += r.Count
	}
	return series
}
