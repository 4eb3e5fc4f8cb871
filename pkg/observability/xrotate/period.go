package xrotate

import (
	"fmt"
	"strings"
	"time"
)

// Period 日历轮转周期。
//
// 周期桶按日历单位对齐：每日桶从本地零点开始，每周桶从周一零点开始，
// 不是"距首次写入 N 小时"。
type Period int

// 支持的轮转周期
const (
	// PeriodNever 不按时间轮转
	PeriodNever Period = iota

	// PeriodHourly 每小时轮转
	PeriodHourly

	// PeriodDaily 每天轮转
	PeriodDaily

	// PeriodWeekly 每周轮转（周一为一周的开始）
	PeriodWeekly

	// PeriodMonthly 每月轮转
	PeriodMonthly
)

// Valid 检查是否是已知的周期常量
func (p Period) Valid() bool {
	return p >= PeriodNever && p <= PeriodMonthly
}

// String 返回周期的字符串表示
func (p Period) String() string {
	switch p {
	case PeriodNever:
		return "never"
	case PeriodHourly:
		return "hourly"
	case PeriodDaily:
		return "daily"
	case PeriodWeekly:
		return "weekly"
	case PeriodMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("period(%d)", int(p))
	}
}

// ParsePeriod 解析字符串为轮转周期（大小写不敏感，自动 TrimSpace）
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "never":
		return PeriodNever, nil
	case "hourly":
		return PeriodHourly, nil
	case "daily":
		return PeriodDaily, nil
	case "weekly":
		return PeriodWeekly, nil
	case "monthly":
		return PeriodMonthly, nil
	default:
		return PeriodNever, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Bucket 日历对齐的时间桶。
//
// start 是桶的起始时刻（桶的规范时间戳）。桶只能与同一周期粒度的桶
// 比较：tracker 按配置的周期构造一次，不会混用粒度。
type Bucket struct {
	period Period
	start  time.Time
}

// Bucket 计算 now 所在的时间桶。
// 使用 now 自带的时区（调用方决定本地时间还是 UTC）。
// PeriodNever 返回零值桶。
func (p Period) Bucket(now time.Time) Bucket {
	year, month, day := now.Date()
	loc := now.Location()

	var start time.Time
	switch p {
	case PeriodHourly:
		start = time.Date(year, month, day, now.Hour(), 0, 0, 0, loc)
	case PeriodDaily:
		start = time.Date(year, month, day, 0, 0, 0, 0, loc)
	case PeriodWeekly:
		// 周一为一周的开始
		midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
		offset := (int(now.Weekday()) + 6) % 7
		start = midnight.AddDate(0, 0, -offset)
	case PeriodMonthly:
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	default:
		return Bucket{}
	}
	return Bucket{period: p, start: start}
}

// IsZero 判断是否是零值桶（无时间周期）
func (b Bucket) IsZero() bool {
	return b.period == PeriodNever && b.start.IsZero()
}

// Equal 判断两个桶是否是同一个日历区间
func (b Bucket) Equal(o Bucket) bool {
	return b.period == o.period && b.start.Equal(o.start)
}

// Start 返回桶的起始时刻
func (b Bucket) Start() time.Time {
	return b.start
}

// Suffix 返回桶的文件名后缀。
//
// 后缀格式：
//   - hourly: 2006-01-02T15
//   - daily: 2006-01-02
//   - weekly: 本周周一的日期 2006-01-02
//   - monthly: 2006-01
func (b Bucket) Suffix() string {
	switch b.period {
	case PeriodHourly:
		return b.start.Format("2006-01-02T15")
	case PeriodDaily, PeriodWeekly:
		return b.start.Format("2006-01-02")
	case PeriodMonthly:
		return b.start.Format("2006-01")
	default:
		return ""
	}
}

// periodTracker 记录上一次观察到的时间桶，检测桶边界跨越。
// 按配置的周期构造一次，只属于持有它的 Writer，不做并发保护。
type periodTracker struct {
	period Period
	last   Bucket
}

func newPeriodTracker(p Period) *periodTracker {
	return &periodTracker{period: p}
}

// current 计算 now 所在的桶
func (t *periodTracker) current(now time.Time) Bucket {
	return t.period.Bucket(now)
}

// transitioned 判断 now 是否已跨出上一次记录的桶。
// 恰好落在边界时刻的写入属于新桶。
func (t *periodTracker) transitioned(now time.Time) bool {
	if t.period == PeriodNever {
		return false
	}
	return !t.current(now).Equal(t.last)
}

// reseed 以 now 所在的桶重置记录（打开文件和完成轮转时调用）
func (t *periodTracker) reseed(now time.Time) {
	t.last = t.current(now)
}
