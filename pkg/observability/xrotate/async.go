package xrotate

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize 异步队列的默认容量
const DefaultQueueSize = 1024

// 编译时断言
var _ Rotator = (*AsyncWriter)(nil)

// asyncConfig AsyncWriter 配置
type asyncConfig struct {
	queueSize    int
	blockTimeout time.Duration
	onError      func(error)
}

// AsyncOption AsyncWriter 配置选项函数
type AsyncOption func(*asyncConfig)

// WithQueueSize 设置队列容量（默认 DefaultQueueSize，必须 >= 1）
func WithQueueSize(n int) AsyncOption {
	return func(c *asyncConfig) {
		c.queueSize = n
	}
}

// WithBlockTimeout 改用有界阻塞策略：队列满时调用方最多等待 d，
// 超时返回 [ErrQueueFull]（记录同样计入丢弃计数）。
// 默认策略是丢弃最新记录而非阻塞调用方。
func WithBlockTimeout(d time.Duration) AsyncOption {
	return func(c *asyncConfig) {
		c.blockTimeout = d
	}
}

// WithAsyncOnError 设置后台写入失败的错误回调。
//
// 消费协程中发生的写入/轮转错误无法同步返回给提交记录的调用方，
// 通过此回调上报。默认为 nil（静默忽略，但错误计入 Errors 计数）。
//
// 安全约束：回调不得向同一 AsyncWriter 写入数据，否则可能递归死锁。
func WithAsyncOnError(fn func(error)) AsyncOption {
	return func(c *asyncConfig) {
		c.onError = fn
	}
}

// AsyncWriter 把写入调用方与磁盘延迟解耦的异步层。
//
// 记录提交到有界队列，由单个后台消费协程按提交顺序写入底层
// Rotator——该协程是轮转状态的唯一写者，跨轮转的记录顺序与提交
// 顺序严格一致，不重排不合并。
//
// 背压策略：队列满时默认丢弃最新记录（调用方不被无限阻塞），丢弃
// 数量通过 [AsyncWriter.Dropped] 随时可查；可选 [WithBlockTimeout]
// 改为有界阻塞。
//
// 关闭语义：Close 停止接收新记录，把队列中已接受的记录全部写完，
// 再关闭底层 Rotator——已接受的记录不会静默丢失。
type AsyncWriter struct {
	rot          Rotator
	ch           chan []byte
	blockTimeout time.Duration
	onError      func(error)

	mu      sync.RWMutex // 保护 closed 与 ch 的关闭时序
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
	errs    atomic.Uint64

	inErrorHandler atomic.Bool // 防止 onError 递归调用
}

// NewAsync 创建异步写入层并启动后台消费协程。
//
// rot 的所有权转移给 AsyncWriter：Close 时由它关闭，调用方不应再
// 直接写入。
func NewAsync(rot Rotator, opts ...AsyncOption) (*AsyncWriter, error) {
	if rot == nil {
		return nil, ErrNilWriter
	}

	cfg := asyncConfig{queueSize: DefaultQueueSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.queueSize < 1 {
		return nil, ErrInvalidQueueSize
	}

	a := &AsyncWriter{
		rot:          rot,
		ch:           make(chan []byte, cfg.queueSize),
		blockTimeout: cfg.blockTimeout,
		onError:      cfg.onError,
		done:         make(chan struct{}),
	}
	go a.run()
	return a, nil
}

// run 单消费者循环：按提交顺序写入底层 Rotator。
// ch 关闭后 range 会先排空积压记录再退出，保证 Close 的排空语义。
func (a *AsyncWriter) run() {
	defer close(a.done)
	for p := range a.ch {
		if _, err := a.rot.Write(p); err != nil {
			a.handleError(err)
		}
	}
}

// Write 实现 io.Writer 接口：把记录提交到队列。
//
// 返回的字节数是记录长度；记录被拷贝后入队，调用方可以立即复用 p。
// 默认策略下队列满时记录被丢弃（计数，不报错）；有界阻塞策略下
// 超时返回 [ErrQueueFull]。
func (a *AsyncWriter) Write(p []byte) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return 0, ErrClosed
	}

	// slog handler 会复用记录缓冲区，入队前必须拷贝
	buf := make([]byte, len(p))
	copy(buf, p)

	if a.blockTimeout > 0 {
		timer := time.NewTimer(a.blockTimeout)
		defer timer.Stop()
		select {
		case a.ch <- buf:
			return len(p), nil
		case <-timer.C:
			a.dropped.Add(1)
			return 0, ErrQueueFull
		}
	}

	select {
	case a.ch <- buf:
		return len(p), nil
	default:
		// 丢弃最新记录：调用方不被阻塞，丢弃量可通过 Dropped 上报
		a.dropped.Add(1)
		return len(p), nil
	}
}

// Rotate 手动触发底层轮转。
// 与队列中的记录并发执行，轮转点相对在途记录的位置不确定。
func (a *AsyncWriter) Rotate() error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return a.rot.Rotate()
}

// Close 排空队列并关闭底层 Rotator。
//
// 已提交到队列的记录全部写入完成后才关闭文件。幂等：重复调用等待
// 排空完成后返回 nil。
func (a *AsyncWriter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	<-a.done
	return a.rot.Close()
}

// Dropped 返回因队列满被丢弃的记录总数
func (a *AsyncWriter) Dropped() uint64 {
	return a.dropped.Load()
}

// Errors 返回后台写入失败的累计次数（用于监控/测试）
func (a *AsyncWriter) Errors() uint64 {
	return a.errs.Load()
}

// handleError 处理消费协程中的写入失败：计数并回调上报。
// 回调 panic 被 recover 隔离；递归保护确保回调内部触发的错误不会
// 再次进入回调。
func (a *AsyncWriter) handleError(err error) {
	a.errs.Add(1)
	if a.onError == nil {
		return
	}
	if a.inErrorHandler.CompareAndSwap(false, true) {
		defer a.inErrorHandler.Store(false)
		a.safeOnError(err)
	}
}

// safeOnError 安全执行 onError 回调，隔离 panic
func (a *AsyncWriter) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			a.errs.Add(1)
		}
	}()
	a.onError(err)
}
