package xrotate

import (
	"fmt"
	"time"
)

// triggerKind 触发类型标签。封闭集合，策略函数按标签穷举分支。
type triggerKind int

const (
	kindNever triggerKind = iota
	kindSize
	kindTime
	kindBoth
)

// Trigger 轮转触发条件。
//
// 封闭的变体集合，通过 [TriggerNever]、[TriggerSize]、[TriggerTime]、
// [TriggerBoth] 构造。零值等价于 TriggerNever()。
//
// 不变式（Validate 强制）：凡包含大小分量，maxSize > 0 且 maxFiles >= 1；
// 不含大小分量的触发条件不做归档清理（保留数量无限制）。
type Trigger struct {
	kind     triggerKind
	period   Period
	maxSize  int64
	maxFiles int
}

// TriggerNever 构造永不轮转的触发条件
func TriggerNever() Trigger {
	return Trigger{kind: kindNever}
}

// TriggerSize 构造按大小轮转的触发条件。
// maxSize 为活动文件的字节数上限，maxFiles 为保留的归档数量。
func TriggerSize(maxSize int64, maxFiles int) Trigger {
	return Trigger{kind: kindSize, maxSize: maxSize, maxFiles: maxFiles}
}

// TriggerTime 构造按日历周期轮转的触发条件。归档保留数量无限制。
func TriggerTime(period Period) Trigger {
	return Trigger{kind: kindTime, period: period}
}

// TriggerBoth 构造混合触发条件：大小或周期任一条件满足即轮转（逻辑或）。
func TriggerBoth(period Period, maxSize int64, maxFiles int) Trigger {
	return Trigger{kind: kindBoth, period: period, maxSize: maxSize, maxFiles: maxFiles}
}

// Validate 校验触发条件的不变式
func (t Trigger) Validate() error {
	if t.HasSize() {
		if t.maxSize <= 0 {
			return fmt.Errorf("%w: got %d, want > 0", ErrInvalidMaxSize, t.maxSize)
		}
		if t.maxFiles < 1 {
			return fmt.Errorf("%w: got %d, want >= 1", ErrInvalidMaxFiles, t.maxFiles)
		}
	}
	if (t.kind == kindTime || t.kind == kindBoth) && !t.period.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, int(t.period))
	}
	return nil
}

// HasSize 是否包含大小分量
func (t Trigger) HasSize() bool {
	return t.kind == kindSize || t.kind == kindBoth
}

// HasTime 是否包含有效的时间分量。
// TriggerTime(PeriodNever) 与 TriggerBoth(PeriodNever, ...) 的时间分量视为无效。
func (t Trigger) HasTime() bool {
	return (t.kind == kindTime || t.kind == kindBoth) && t.period != PeriodNever
}

// Period 返回时间分量的周期（无时间分量时为 PeriodNever）
func (t Trigger) Period() Period {
	if t.kind == kindTime || t.kind == kindBoth {
		return t.period
	}
	return PeriodNever
}

// MaxSize 返回大小上限（无大小分量时 ok 为 false）
func (t Trigger) MaxSize() (int64, bool) {
	if t.HasSize() {
		return t.maxSize, true
	}
	return 0, false
}

// MaxFiles 返回归档保留数量（无大小分量时 ok 为 false，表示不清理）
func (t Trigger) MaxFiles() (int, bool) {
	if t.HasSize() {
		return t.maxFiles, true
	}
	return 0, false
}

// String 返回触发条件的可读表示（诊断用）
func (t Trigger) String() string {
	switch t.kind {
	case kindSize:
		return fmt.Sprintf("size(maxSize=%d, maxFiles=%d)", t.maxSize, t.maxFiles)
	case kindTime:
		return fmt.Sprintf("time(%s)", t.period)
	case kindBoth:
		return fmt.Sprintf("both(%s, maxSize=%d, maxFiles=%d)", t.period, t.maxSize, t.maxFiles)
	default:
		return "never"
	}
}

// sizeTracker 统计活动文件自打开或上次轮转以来的字节数。
// 只属于持有它的 Writer，不做并发保护。
type sizeTracker struct {
	n int64
}

// record 累计一次成功写入的字节数
func (s *sizeTracker) record(n int) {
	s.n += int64(n)
}

// wouldExceed 判断再写入 pending 字节后是否会超过上限。
// 在写入前判断，保证活动文件在任何写入前的实测大小不超过上限。
func (s *sizeTracker) wouldExceed(pending int, limit int64) bool {
	return s.n+int64(pending) > limit
}

// reset 重置为指定值（打开文件时以磁盘上的真实大小播种，
// 覆盖进程重启后续写已有文件的场景）
func (s *sizeTracker) reset(n int64) {
	s.n = n
}

// size 当前累计字节数
func (s *sizeTracker) size() int64 {
	return s.n
}

// shouldRotate 纯判定函数：对触发条件标签穷举，结合两个 tracker 的状态
// 与本次待写入的字节数给出轮转判定。
//
// Both 语义是逻辑或：大小或周期任一条件满足即轮转。两个条件在同一次
// 写入上同时满足时只发生一次轮转（调用方执行一次轮转后两个 tracker
// 都被重置）。
func shouldRotate(t Trigger, size *sizeTracker, period *periodTracker, pending int, now time.Time) bool {
	switch t.kind {
	case kindNever:
		return false
	case kindSize:
		return size.wouldExceed(pending, t.maxSize)
	case kindTime:
		return period.transitioned(now)
	case kindBoth:
		return period.transitioned(now) || size.wouldExceed(pending, t.maxSize)
	default:
		return false
	}
}
