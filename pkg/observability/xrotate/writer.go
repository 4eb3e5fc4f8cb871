package xrotate

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/omeyang/logkit/pkg/util/xfile"
)

// DefaultFileMode 活动文件的默认权限
const DefaultFileMode os.FileMode = 0600

// 可注入的系统调用（测试用故障注入）
var osRename = os.Rename

// 编译时断言
var _ Rotator = (*Writer)(nil)

// writerConfig Writer 配置
type writerConfig struct {
	fileMode os.FileMode
	now      func() time.Time
	onError  func(error)
}

// WriterOption Writer 配置选项函数
type WriterOption func(*writerConfig)

// WithFileMode 设置活动文件权限（默认 0600）。
// 仅允许权限位（0000~0777），不允许文件类型位或 setuid/setgid。
func WithFileMode(mode os.FileMode) WriterOption {
	return func(c *writerConfig) {
		c.fileMode = mode
	}
}

// WithClock 注入时钟（测试用）。
// 默认 time.Now；注入的时钟决定周期桶的时区。
func WithClock(now func() time.Time) WriterOption {
	return func(c *writerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOnError 设置非致命故障的错误回调。
//
// 归档重命名失败（已降级继续运行）和保留清理的部分失败通过此回调上报，
// 默认为 nil（静默忽略）。
//
// 安全约束：回调函数不得向同一 Writer 写入数据，否则会导致递归死锁。
// 推荐输出到 os.Stderr 或独立的错误通道。
func WithOnError(fn func(error)) WriterOption {
	return func(c *writerConfig) {
		c.onError = fn
	}
}

// Writer 按触发条件轮转的日志文件写入器。
//
// 状态机：Closed → Open → Rotating → Open → … → Closed。
// 活动文件始终位于构造时的路径上；首次写入时惰性打开（追加模式），
// 并以磁盘上的真实文件大小与修改时间播种两个 tracker，覆盖进程重启
// 后续写已有文件的场景。运行状态从不持久化。
//
// 并发安全：所有文件操作与 tracker 状态由互斥锁保护。
type Writer struct {
	path     string
	trigger  Trigger
	fileMode os.FileMode
	now      func() time.Time
	onError  func(error)

	mu     sync.Mutex
	file   *os.File
	size   sizeTracker
	period *periodTracker
	closed bool
}

// NewWriter 创建轮转写入器。
//
// 对路径做格式净化并创建缺失的父目录（权限 0750）；文件本身在首次
// 写入时才创建。trigger 的不变式在此校验，之后不再改变。
func NewWriter(path string, trigger Trigger, opts ...WriterOption) (*Writer, error) {
	if path == "" {
		return nil, ErrEmptyFilename
	}
	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	cfg := writerConfig{
		fileMode: DefaultFileMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.fileMode == 0 || cfg.fileMode&^os.FileMode(0o777) != 0 {
		return nil, fmt.Errorf("%w: got %04o, only permission bits (0001~0777) allowed",
			ErrInvalidFileMode, cfg.fileMode)
	}

	safePath, err := xfile.SanitizePath(path)
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	return &Writer{
		path:     safePath,
		trigger:  trigger,
		fileMode: cfg.fileMode,
		now:      cfg.now,
		onError:  cfg.onError,
		period:   newPeriodTracker(trigger.Period()),
	}, nil
}

// Path 返回活动文件路径
func (w *Writer) Path() string {
	return w.path
}

// Write 实现 io.Writer 接口。
//
// 写入前求值轮转判定；需要轮转时先完成整个轮转（关闭、归档、重开、
// 清理），再把本次记录追加到新的活动文件。大小与周期条件同时满足时
// 只发生一次轮转。
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, ErrClosed
	}
	if w.file == nil {
		if err := w.openLocked(); err != nil {
			return 0, err
		}
	}

	now := w.now()
	if shouldRotate(w.trigger, &w.size, w.period, len(p), now) {
		if err := w.rotateLocked(now); err != nil {
			return 0, err
		}
	}

	n, err = w.file.Write(p)
	w.size.record(n)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return n, nil
}

// Rotate 手动触发一次轮转。
// 文件尚未打开时先打开（可能产生一个空归档，与自动轮转行为一致）。
func (w *Writer) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.file == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}
	return w.rotateLocked(w.now())
}

// Close 刷盘并关闭活动文件。
//
// 幂等：重复调用返回 nil。关闭后 Write 和 Rotate 返回 [ErrClosed]。
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.file == nil {
		return nil
	}
	_ = w.file.Sync()
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return fmt.Errorf("xrotate: close active file: %w", err)
	}
	return nil
}

// openLocked 以追加模式打开（或创建）活动文件，并播种两个 tracker：
// 大小取文件的真实长度，周期桶取文件修改时间（新文件即当前时刻）。
// 调用方必须持有 w.mu。
func (w *Writer) openLocked() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, w.fileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	w.file = f

	var size int64
	seed := w.now()
	if info, serr := f.Stat(); serr == nil {
		size = info.Size()
		if size > 0 {
			// 已有内容的文件：修改时间反映最后一次写入所属的周期桶
			seed = info.ModTime()
		}
	}
	w.size.reset(size)
	w.period.reseed(seed)
	return nil
}

// rotateLocked 执行一次完整的轮转。调用方必须持有 w.mu，且文件已打开。
//
// 步骤：刷盘并关闭活动文件 → 计算归档名（冲突时递增序号）→ 原子重命名
// （rename 而非 copy，避免崩溃时丢数据）→ 重新打开活动文件（tracker 随
// 之重置）→ 尽力而为的保留清理。
//
// 重命名失败是唯一不可恢复半途的情形：此时活动文件已关闭，Writer 仍
// 必须打开新的活动文件保证日志不中断——先尝试把旧文件挪到恢复命名路径，
// 失败则原地复用；故障通过错误回调上报而非无限重试。仅当新的活动文件
// 也打不开时才向调用方升级错误。
func (w *Writer) rotateLocked(now time.Time) error {
	if w.file != nil {
		_ = w.file.Sync()
		if cerr := w.file.Close(); cerr != nil {
			w.reportError(fmt.Errorf("%w: close before archive: %w", ErrRotationFailed, cerr))
		}
		w.file = nil
	}

	// 归档名使用旧桶的规范时间戳（数据所属的桶），零值桶退化为
	// 仅大小轮转的紧凑时间戳命名
	oldBucket := w.period.last

	name, err := nextArchiveName(w.path, oldBucket, now)
	if err == nil {
		err = osRename(w.path, name)
	}
	if err != nil {
		// 恢复命名失败时旧文件留在原路径，openLocked 会以追加模式复用它
		recovery := w.path + ".rotate-failed." + now.Format(stampLayout)
		_ = osRename(w.path, recovery)
		w.reportError(fmt.Errorf("%w: %w", ErrRotationFailed, err))
	}

	if oerr := w.openLocked(); oerr != nil {
		return fmt.Errorf("%w: %w", ErrRotationFailed, oerr)
	}

	if maxFiles, ok := w.trigger.MaxFiles(); ok {
		if _, perr := prune(w.path, maxFiles); perr != nil {
			w.reportError(perr)
		}
	}
	return nil
}

// reportError 通过回调上报非致命故障。
// 回调 panic 被 recover 隔离，防止错误通知反向中断业务主流程。
func (w *Writer) reportError(err error) {
	if err != nil && w.onError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		w.onError(err)
	}
}
