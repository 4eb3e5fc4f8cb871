package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数类型
//
// 用于日志治理场景：字段重命名、敏感信息脱敏、字段过滤等。
// 返回修改后的属性，如果返回空 Key 的 Attr，该属性会被移除。
//
// 参数：
//   - groups: 当前属性所在的分组路径（如 ["request", "headers"]）
//   - a: 原始属性
//
// 示例：
//
//	// 脱敏密码字段
//	func(groups []string, a slog.Attr) slog.Attr {
//	    if a.Key == "password" {
//	        return slog.String("password", "***")
//	    }
//	    return a
//	}
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志配置构建器
type Builder struct {
	console        bool
	consoleOutput  io.Writer
	level          Level
	levelVar       *slog.LevelVar
	format         string
	addSource      bool
	replaceAttr    ReplaceAttrFunc // 属性替换函数（用于治理）
	rotator        xrotate.Rotator
	async          bool
	asyncQueueSize int
	onError        func(error) // 内部错误回调（Handler.Handle 失败时）
	err            error
}

// New 创建配置构建器
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		console:       true,
		consoleOutput: os.Stderr,
		level:         LevelInfo,
		levelVar:      levelVar,
		format:        "text",
	}
}

// SetConsole 是否输出到控制台（stderr），默认启用
//
// 与 SetFile 可以同时启用：每条记录经 fan-out 分发到两路。
func (b *Builder) SetConsole(enable bool) *Builder {
	b.console = enable
	return b
}

// SetOutput 设置控制台输出目标（默认 os.Stderr）
// 主要用于测试场景捕获输出。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w == nil {
		b.err = fmt.Errorf("xlog: nil output writer")
		return b
	}
	b.console = true
	b.consoleOutput = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.level = level
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		// 空值视为使用默认格式，避免误把“没填”变成配置错误。
		b.format = "text"
		return b
	}
	if normalized != "text" && normalized != "json" {
		b.err = fmt.Errorf("xlog: unknown format %q", format)
		return b
	}
	b.format = normalized
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetFile 设置文件输出，由 xrotate 负责轮转
//
// trigger 控制轮转时机（xrotate.TriggerSize/TriggerTime/TriggerBoth/TriggerNever），
// opts 透传给 xrotate.NewWriter（文件权限、时钟、错误回调等）。
func (b *Builder) SetFile(path string, trigger xrotate.Trigger, opts ...xrotate.WriterOption) *Builder {
	if b.err != nil {
		return b
	}
	rotator, err := xrotate.NewWriter(path, trigger, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	return b
}

// SetRotator 直接设置文件侧的轮转器
// 用于测试注入或复用外部创建的 Rotator。
func (b *Builder) SetRotator(rotator xrotate.Rotator) *Builder {
	b.rotator = rotator
	return b
}

// SetAsync 文件写入经有界队列异步化
//
// queueSize <= 0 时使用 xrotate.DefaultQueueSize。
// 队列满时丢弃最新记录（控制台路不受影响），丢弃数量可通过
// xrotate.AsyncWriter.Dropped() 观测。仅在设置了文件输出时生效。
func (b *Builder) SetAsync(queueSize int) *Builder {
	b.async = true
	b.asyncQueueSize = queueSize
	return b
}

// SetOnError 设置内部错误回调
//
// 当 Handler.Handle() 失败时（如磁盘满、权限问题、writer 异常），
// 会调用此回调。默认策略仍然"不向外返回错误、不 panic"，
// 但允许业务把内部错误接到 metrics/告警系统。
// 同一个回调也会接到 xrotate 异步队列的下游写入错误。
//
// 注意事项：
//   - 回调在热路径同步执行，应保持轻量，复杂逻辑建议使用 channel 异步处理
//   - 内置递归保护：如果回调内部触发日志错误，不会导致无限递归
//   - 回调失败不会影响日志写入的返回值
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数（日志治理）
//
// 用于在日志输出前对属性进行处理，支持以下场景：
//   - 字段重命名：统一字段名规范
//   - 敏感信息脱敏：隐藏密码、token 等
//   - 字段过滤：移除不需要的属性
//   - 值格式化：统一时间格式、数值精度等
//
// 示例 - 脱敏密码：
//
//	logger, _, _ := xlog.New().
//		SetReplaceAttr(func(groups []string, a slog.Attr) slog.Attr {
//			if a.Key == "password" || a.Key == "token" {
//				return slog.String(a.Key, "***REDACTED***")
//			}
//			return a
//		}).
//		Build()
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，关闭文件轮转器（幂等），异步队列会先排空
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}

	// 设置属性替换函数（日志治理）
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	// 文件侧可选异步化
	rotator := b.rotator
	if rotator != nil && b.async {
		asyncOpts := []xrotate.AsyncOption{}
		if b.asyncQueueSize > 0 {
			asyncOpts = append(asyncOpts, xrotate.WithQueueSize(b.asyncQueueSize))
		}
		if b.onError != nil {
			asyncOpts = append(asyncOpts, xrotate.WithAsyncOnError(b.onError))
		}
		aw, err := xrotate.NewAsync(rotator, asyncOpts...)
		if err != nil {
			return nil, nil, err
		}
		rotator = aw
	}

	var handlers []slog.Handler
	if b.console {
		handlers = append(handlers, b.newHandler(b.consoleOutput, opts))
	}
	if rotator != nil {
		handlers = append(handlers, b.newHandler(rotator, opts))
	}
	if len(handlers) == 0 {
		return nil, nil, fmt.Errorf("xlog: no output configured, enable console or set a file")
	}

	// 创建 logger
	// 初始化共享指针，确保派生 logger (With/WithGroup) 能正确共享状态
	logger := &xlogger{
		handler:        newFanout(handlers...),
		levelVar:       b.levelVar,
		onError:        b.onError,
		errorCount:     new(atomic.Uint64), // 共享错误计数器
		addSource:      b.addSource,        // 传递源码位置设置，用于热路径优化
		inErrorHandler: new(atomic.Bool),   // 共享递归保护标记
	}

	cleanup := newCleanup(rotator)

	return logger, cleanup, nil
}

// newHandler 按配置的格式创建编码 handler
func (b *Builder) newHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if b.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// newCleanup 创建清理函数，资源只释放一次
func newCleanup(rotator xrotate.Rotator) func() error {
	var once sync.Once

	return func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
}
