// logctl 把标准输入写进带轮转的日志文件。
//
// 用法:
//
//	logctl [全局选项] <命令> [命令参数]
//
// 命令:
//
//	pipe           把 stdin 逐行写入轮转日志文件（默认命令）
//	check          校验日志配置文件并打印解析结果
//	help           显示帮助信息
//
// pipe 命令说明:
//
//	输出目标既可以用 --config 指定配置文件（file 段生效），
//	也可以用 --output 加轮转参数内联指定。收到 SIGINT/SIGTERM 时
//	停止读取并排空已入队的数据，保证不截断最后一行。
//
// 退出码:
//
//	0: 执行成功
//	1: 执行失败（写入错误、配置非法等）
//	2: 参数错误（缺少输出目标、未知命令等）
//
// 示例:
//
//	journalctl -f | logctl pipe --output /var/log/app.log --rotation size
//	tail -F access.log | logctl pipe -o /var/log/app.log -r both --max-size 50M --max-files 7
//	logctl pipe --config /etc/app/logging.yaml
//	logctl check --config /etc/app/logging.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:           "logctl",
		Usage:          "把标准输入写进带轮转的日志文件",
		Version:        fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	// SIGINT/SIGTERM 触发优雅关停：停止读取、排空队列、关闭文件
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
