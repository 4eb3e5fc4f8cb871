// Package xconf 提供日志配置的加载、解析和热重载，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为 logkit 的配置层：把 YAML/JSON 配置文件解析为可直接驱动
// xlog/xrotate 的 LogConfig。不负责通用配置治理（环境变量覆盖、
// 远端配置中心），这些能力由上层业务框架按需实现。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 轮转配置
//
// rotation 字段支持两种写法。简写形式直接给触发类型，使用内置默认值
// （10M / 5 个归档 / 每日）：
//
//	file:
//	  path: /var/log/app.log
//	  rotation: size
//
// 完整形式按字段给出，max_size 支持带单位的字符串（K/M/G，不带单位按 KB）：
//
//	file:
//	  path: /var/log/app.log
//	  rotation:
//	    type: both
//	    period: daily
//	    max_size: 50M
//	    max_files: 7
//
// # 配置监视
//
// 支持文件变更监视和自动重载（基于 fsnotify）。
// 特性：监视目录、内置防抖、并发安全、支持 vim/emacs 原子写入。
// 回调收到的是重新解析后的 LogConfig，可用于运行期调整日志级别。
// Stop() 保证返回后不再有回调执行。
package xconf
