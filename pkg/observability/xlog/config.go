package xlog

import (
	"github.com/omeyang/logkit/pkg/config/xconf"
)

// FromConfig 按 xconf.LogConfig 构建 Logger
//
// 配置到 Builder 的映射：
//   - console → SetConsole
//   - level/format/add_source → SetLevelString/SetFormat/SetAddSource
//   - file.path + file.rotation → SetFile
//   - file.async/queue_size → SetAsync
//
// onError 可以为 nil。返回的 cleanup 与 Build 的语义相同。
func FromConfig(cfg *xconf.LogConfig, onError func(error)) (LoggerWithLevel, func() error, error) {
	b := New().
		SetConsole(cfg.Console).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAddSource(cfg.AddSource)

	if onError != nil {
		b.SetOnError(onError)
	}

	if cfg.File != nil {
		trigger, err := cfg.File.Rotation.Trigger()
		if err != nil {
			return nil, nil, err
		}
		b.SetFile(cfg.File.Path, trigger)
		if cfg.File.Async {
			b.SetAsync(cfg.File.QueueSize)
		}
	}

	return b.Build()
}
