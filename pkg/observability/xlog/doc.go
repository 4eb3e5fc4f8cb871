// Package xlog 基于 log/slog 的结构化日志库，文件输出由 xrotate 负责轮转。
//
// # 核心功能
//
//   - Builder 模式配置（控制台/文件双路输出、级别、格式、轮转、异步写入）
//   - 动态级别调整（运行时热更新）
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）。
// Builder 为一次性使用：调用 [Builder.Build] 后不可复用，需通过 [New] 创建新实例。
// Builder 方法：SetConsole、SetOutput、SetLevel、SetLevelString、SetFormat、
// SetAddSource、SetFile、SetAsync、SetOnError、SetReplaceAttr。
//
// Build() 返回 (LoggerWithLevel, cleanup, error)。cleanup 负责关闭文件
// 轮转器（幂等），调用方应在进程退出前调用，确保异步队列排空。
// 一个进程可以持有多个互不相关的 Logger，各管各的文件。
//
// [Builder.SetReplaceAttr] 支持日志治理场景（字段重命名、敏感信息脱敏、字段过滤）。
// xlog 提供机制而非策略——无内置敏感字段黑名单，由调用方按业务需求配置脱敏规则。
//
// # 双路输出
//
// SetConsole(true) 与 SetFile 可以同时启用，每条记录经 fan-out 分发到
// 两个 sink：控制台同步写 stderr，文件侧可经 SetAsync 走有界队列。
//
// # 配置驱动
//
// [FromConfig] 把 xconf.LogConfig 直接构建为 Logger，配置文件示例见 xconf 包文档。
//
// # 全局 Logger
//
// 适用于脚手架、小工具等简单场景，服务端推荐依赖注入。
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//   - [Debug]、[Info]、[Warn]、[Error]: 全局便利函数，签名为 (ctx, msg, ...slog.Attr)
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// 可通过 [ParseLevel] 从字符串解析。Level 实现 encoding.TextMarshaler/TextUnmarshaler，
// 支持配置文件直接序列化/反序列化。
//
// # 派生 Logger 与级别控制
//
// [Logger.With] 和 [Logger.WithGroup] 返回 [Logger] 接口（不含 [Leveler]）。
// 底层实现同时实现了 [LoggerWithLevel]，可通过类型断言获取级别控制能力：
//
//	child := logger.With(slog.String("k", "v"))
//	if lwl, ok := child.(xlog.LoggerWithLevel); ok {
//	    lwl.SetLevel(xlog.LevelDebug)
//	}
//
// 派生 logger 共享父级的 LevelVar，动态级别变更会同步生效。
package xlog
