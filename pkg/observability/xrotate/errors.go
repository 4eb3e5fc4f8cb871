package xrotate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 配置校验错误
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize 大小触发条件的 maxSize 无效（必须 > 0）
	ErrInvalidMaxSize = errors.New("xrotate: invalid max size")

	// ErrInvalidMaxFiles 大小触发条件的 maxFiles 无效（必须 >= 1）
	ErrInvalidMaxFiles = errors.New("xrotate: invalid max files")

	// ErrInvalidPeriod 未知的轮转周期
	ErrInvalidPeriod = errors.New("xrotate: invalid rotation period")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid file mode")

	// ErrInvalidQueueSize 异步队列容量无效（必须 >= 1）
	ErrInvalidQueueSize = errors.New("xrotate: invalid queue size")

	// ErrNilWriter 异步层包装的底层 Rotator 为 nil
	ErrNilWriter = errors.New("xrotate: nil rotator")
)

// 运行时错误
var (
	// ErrClosed 轮转器已关闭，Write/Rotate 不再接受调用
	ErrClosed = errors.New("xrotate: rotator is closed")

	// ErrOpenFailed 无法创建或打开活动文件
	ErrOpenFailed = errors.New("xrotate: open active file failed")

	// ErrWriteFailed 追加写入活动文件失败
	ErrWriteFailed = errors.New("xrotate: write active file failed")

	// ErrRotationFailed 轮转过程中的归档重命名或重新打开失败
	ErrRotationFailed = errors.New("xrotate: rotation failed")

	// ErrNameCollision 归档目标名已存在且序号探测耗尽
	ErrNameCollision = errors.New("xrotate: archive name collision")

	// ErrPruneFailed 一个或多个归档删除失败（部分失败，非致命）
	ErrPruneFailed = errors.New("xrotate: prune archives failed")

	// ErrQueueFull 有界阻塞策略下等待超时，记录未入队
	ErrQueueFull = errors.New("xrotate: write queue full")
)

// PruneError 保留清理的部分失败结果。
//
// Failures 的键是删除失败的归档路径。errors.Is(err, ErrPruneFailed) 成立。
// 清理是尽力而为：出现 PruneError 不影响 Writer 继续接受写入。
type PruneError struct {
	Failures map[string]error
}

// Error 实现 error 接口
func (e *PruneError) Error() string {
	paths := make([]string, 0, len(e.Failures))
	for p := range e.Failures {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return fmt.Sprintf("%v: %s", ErrPruneFailed, strings.Join(paths, ", "))
}

// Is 支持 errors.Is(err, ErrPruneFailed)
func (e *PruneError) Is(target error) bool {
	return target == ErrPruneFailed
}
