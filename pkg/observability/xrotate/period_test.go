package xrotate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePeriod 测试周期解析
func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"never", PeriodNever, false},
		{"hourly", PeriodHourly, false},
		{"daily", PeriodDaily, false},
		{"weekly", PeriodWeekly, false},
		{"monthly", PeriodMonthly, false},
		{"  Daily  ", PeriodDaily, false},
		{"MONTHLY", PeriodMonthly, false},
		{"quarterly", PeriodNever, true},
		{"", PeriodNever, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPeriodBucket 测试日历对齐的桶计算
func TestPeriodBucket(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	// 2026-08-26 是周三
	now := time.Date(2026, 8, 26, 14, 35, 27, 0, loc)

	t.Run("hourly 对齐到整点", func(t *testing.T) {
		b := PeriodHourly.Bucket(now)
		assert.Equal(t, time.Date(2026, 8, 26, 14, 0, 0, 0, loc), b.Start())
		assert.Equal(t, "2026-08-26T14", b.Suffix())
	})

	t.Run("daily 对齐到本地零点", func(t *testing.T) {
		b := PeriodDaily.Bucket(now)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, loc), b.Start())
		assert.Equal(t, "2026-08-26", b.Suffix())
	})

	t.Run("weekly 对齐到周一零点", func(t *testing.T) {
		b := PeriodWeekly.Bucket(now)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), b.Start())
		assert.Equal(t, "2026-08-24", b.Suffix())
	})

	t.Run("weekly 周日归属本周而非下周", func(t *testing.T) {
		sunday := time.Date(2026, 8, 30, 10, 0, 0, 0, loc)
		b := PeriodWeekly.Bucket(sunday)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), b.Start())
	})

	t.Run("weekly 周一零点属于新的一周", func(t *testing.T) {
		monday := time.Date(2026, 8, 31, 0, 0, 0, 0, loc)
		b := PeriodWeekly.Bucket(monday)
		assert.Equal(t, monday, b.Start())
	})

	t.Run("monthly 对齐到月初", func(t *testing.T) {
		b := PeriodMonthly.Bucket(now)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, loc), b.Start())
		assert.Equal(t, "2026-08", b.Suffix())
	})

	t.Run("never 返回零值桶", func(t *testing.T) {
		b := PeriodNever.Bucket(now)
		assert.True(t, b.IsZero())
		assert.Empty(t, b.Suffix())
	})
}

// TestPeriodTrackerTransition 测试桶边界跨越检测
func TestPeriodTrackerTransition(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 8, 26, 23, 59, 59, 0, loc)

	t.Run("同一桶内不触发", func(t *testing.T) {
		pt := newPeriodTracker(PeriodDaily)
		pt.reseed(base)
		assert.False(t, pt.transitioned(base.Add(-time.Hour)))
		assert.False(t, pt.transitioned(base))
	})

	t.Run("恰好落在边界时刻的写入属于新桶", func(t *testing.T) {
		pt := newPeriodTracker(PeriodDaily)
		pt.reseed(base)
		midnight := time.Date(2026, 8, 27, 0, 0, 0, 0, loc)
		assert.True(t, pt.transitioned(midnight))
	})

	t.Run("跨越边界后 reseed 复位", func(t *testing.T) {
		pt := newPeriodTracker(PeriodHourly)
		pt.reseed(base)
		next := base.Add(time.Second) // 23:59:59 + 1s 进入次日 00 时的桶
		require.True(t, pt.transitioned(next))
		pt.reseed(next)
		assert.False(t, pt.transitioned(next.Add(time.Minute)))
	})

	t.Run("PeriodNever 从不触发", func(t *testing.T) {
		pt := newPeriodTracker(PeriodNever)
		pt.reseed(base)
		assert.False(t, pt.transitioned(base.AddDate(1, 0, 0)))
	})
}
