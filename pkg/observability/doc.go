// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持控制台与文件双输出
//   - xrotate: 日志文件轮转，按大小/时间触发，保留数量可配
//
// 设计原则：
//   - 日志输出与轮转策略解耦，xlog 经 io.Writer 接入 xrotate
//   - 支持动态级别控制与配置热加载
package observability
