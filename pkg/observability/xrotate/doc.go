// Package xrotate 提供日志文件的轮转与保留能力。
//
// 核心是一个按大小和/或日历周期轮转的 [Writer]：活动文件始终位于配置的
// 路径上，轮转时关闭活动文件、按命名方案重命名为归档文件、重新打开新的
// 活动文件，并按保留数量清理最旧的归档。[NewAsync] 在其上叠加一个有界
// 队列与单消费者后台协程，将调用方与磁盘延迟解耦。
//
// # 轮转触发
//
// 触发条件是一个封闭的变体集合（[Trigger]）：
//
//   - [TriggerNever]: 永不轮转
//   - [TriggerSize]: 超过大小上限时轮转，并按 maxFiles 清理归档
//   - [TriggerTime]: 跨越日历周期（小时/天/周/月）边界时轮转
//   - [TriggerBoth]: 大小或周期任一条件满足即轮转（逻辑或）
//
// 周期桶按日历对齐（如每日桶从本地零点开始），不是"距首次写入 24 小时"。
// 周期条件在写入时惰性求值：长时间无写入时，旧桶的文件会保持打开，
// 直到下一次写入才轮转。
//
// # 归档命名
//
//   - 仅大小轮转: base.20060102T150405（紧凑时间戳，字典序即时间序）
//   - 周期/混合轮转: base.<桶后缀>（如 base.2026-08-30），同桶内因大小
//     压力产生的多次轮转追加递增序号（base.2026-08-30.1）
//
// 目标名已存在时自动递增序号探测，探测耗尽返回 [ErrNameCollision]。
// 保留清理只删除符合该命名方案的文件，不会触碰目录中的其他文件。
//
// # 失败语义
//
// 打开/写入失败同步返回给调用方，不静默丢弃。归档重命名失败时 Writer
// 仍会打开新的活动文件继续记录（旧文件留在恢复命名路径上），仅当新
// 活动文件也打不开时才升级为错误。保留清理是尽力而为，单个删除失败
// 通过错误回调上报（[*PruneError]），不阻塞后续写入。
//
// # 扩展新实现
//
//  1. 创建新文件实现 Rotator 接口
//  2. 定义独立的 Option 集
//  3. 提供独立的构造函数
//  4. 不修改 Rotator 接口
package xrotate
