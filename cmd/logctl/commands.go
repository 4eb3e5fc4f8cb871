package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/logkit/pkg/config/xconf"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// usageError 表示参数错误的场景，main 映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// maxLineSize 单行数据的长度上限（1 MiB）。
const maxLineSize = 1 << 20

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPipeCommand(),
		createCheckCommand(),
	}
}

// createPipeCommand 创建 pipe 子命令。
func createPipeCommand() *cli.Command {
	return &cli.Command{
		Name:    "pipe",
		Aliases: []string{"p"},
		Usage:   "把 stdin 逐行写入轮转日志文件",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "日志配置文件路径（file 段生效）",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "日志文件路径（与 --config 二选一）",
			},
			&cli.StringFlag{
				Name:    "rotation",
				Aliases: []string{"r"},
				Usage:   "轮转类型: never/size/time/both",
				Value:   "never",
			},
			&cli.StringFlag{
				Name:  "max-size",
				Usage: "大小上限，支持 K/M/G 单位（size/both 生效）",
			},
			&cli.IntFlag{
				Name:  "max-files",
				Usage: "保留的归档数量（size/both 生效）",
			},
			&cli.StringFlag{
				Name:  "period",
				Usage: "轮转周期: hourly/daily/weekly/monthly（time/both 生效）",
			},
			&cli.BoolFlag{
				Name:  "async",
				Usage: "经有界队列异步写入",
			},
			&cli.IntFlag{
				Name:  "queue-size",
				Usage: "异步队列容量（0 为默认值）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg, err := resolveFileConfig(pipeFlagsFrom(cmd))
			if err != nil {
				return err
			}
			return cmdPipe(ctx, os.Stdin, fileCfg)
		},
	}
}

// createCheckCommand 创建 check 子命令。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "校验日志配置文件并打印解析结果",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "日志配置文件路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				return &usageError{msg: "check 需要 --config 指定配置文件"}
			}
			return cmdCheck(cmd.Writer, path)
		},
	}
}

// pipeFlags pipe 命令的内联输出参数。
type pipeFlags struct {
	configPath string
	output     string
	rotation   string
	maxSize    string
	maxFiles   int
	period     string
	async      bool
	queueSize  int
}

func pipeFlagsFrom(cmd *cli.Command) pipeFlags {
	return pipeFlags{
		configPath: cmd.String("config"),
		output:     cmd.String("output"),
		rotation:   cmd.String("rotation"),
		maxSize:    cmd.String("max-size"),
		maxFiles:   cmd.Int("max-files"),
		period:     cmd.String("period"),
		async:      cmd.Bool("async"),
		queueSize:  cmd.Int("queue-size"),
	}
}

// resolveFileConfig 从 --config 或内联 flag 解析文件输出配置。
func resolveFileConfig(flags pipeFlags) (*xconf.FileConfig, error) {
	if flags.configPath != "" && flags.output != "" {
		return nil, &usageError{msg: "--config 与 --output 不能同时指定"}
	}

	if flags.configPath != "" {
		cfg, err := xconf.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		if cfg.File == nil {
			return nil, &usageError{msg: fmt.Sprintf("配置 %s 缺少 file 段", flags.configPath)}
		}
		return cfg.File, nil
	}

	if flags.output == "" {
		return nil, &usageError{msg: "需要 --output 或 --config 指定输出目标"}
	}

	rotation, err := inlineRotation(flags)
	if err != nil {
		return nil, err
	}

	return &xconf.FileConfig{
		Path:      flags.output,
		Async:     flags.async,
		QueueSize: flags.queueSize,
		Rotation:  rotation,
	}, nil
}

// inlineRotation 把内联 flag 组装成轮转配置。
// 先按简写形式取默认值，再用显式 flag 覆盖。
func inlineRotation(flags pipeFlags) (xconf.RotationConfig, error) {
	m := map[string]any{"type": flags.rotation}
	if flags.maxSize != "" {
		m["max_size"] = flags.maxSize
	}
	if flags.maxFiles > 0 {
		m["max_files"] = flags.maxFiles
	}
	if flags.period != "" {
		m["period"] = flags.period
	}

	// 只给了类型时等价于简写形式
	if len(m) == 1 {
		return xconf.DecodeRotation(flags.rotation)
	}

	// size/both 允许省略 max_size，落到简写形式的默认值
	typ, _ := m["type"].(string)
	if _, ok := m["max_size"]; !ok && (typ == "size" || typ == "both") {
		m["max_size"] = fmt.Sprintf("%d", int64(xconf.DefaultMaxSize)>>10) // DecodeRotation 按 KB 解释数值
	}
	if _, ok := m["period"]; !ok && typ == "both" {
		m["period"] = "daily"
	}

	return xconf.DecodeRotation(m)
}

// cmdPipe 执行 pipe 命令：stdin → 轮转文件。
func cmdPipe(ctx context.Context, src io.Reader, fileCfg *xconf.FileConfig) error {
	trigger, err := fileCfg.Rotation.Trigger()
	if err != nil {
		return err
	}

	writer, err := xrotate.NewWriter(fileCfg.Path, trigger)
	if err != nil {
		return err
	}

	var sink xrotate.Rotator = writer
	if fileCfg.Async {
		opts := []xrotate.AsyncOption{}
		if fileCfg.QueueSize > 0 {
			opts = append(opts, xrotate.WithQueueSize(fileCfg.QueueSize))
		}
		aw, aerr := xrotate.NewAsync(writer, opts...)
		if aerr != nil {
			_ = writer.Close()
			return aerr
		}
		sink = aw
	}

	pipeErr := pipeStream(ctx, src, sink)
	// Close 排空异步队列并落盘
	if cerr := sink.Close(); cerr != nil {
		return errors.Join(pipeErr, cerr)
	}
	return pipeErr
}

// pipeStream 逐行搬运：一个 goroutine 读、一个 goroutine 写。
// ctx 取消时关闭输入源解除读取方的阻塞，已入队的行仍然写完。
func pipeStream(ctx context.Context, src io.Reader, dst io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan []byte, 256)

	// 阻塞在 Read 上的读取方感知不到 ctx，取消时直接关闭输入源解除阻塞。
	// 正常结束时 Wait 也会取消 gctx，此 goroutine 随之退出。
	go func() {
		<-gctx.Done()
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(src)
		scanner.Buffer(make([]byte, 64<<10), maxLineSize)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes())+1)
			copy(line, scanner.Bytes())
			line[len(line)-1] = '\n'
			select {
			case lines <- line:
			case <-gctx.Done():
				return nil
			}
		}
		// 输入源被取消路径关闭时 Scan 以错误收尾，不算失败
		if err := scanner.Err(); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// 读取方退出后排空剩余行
		for line := range lines {
			if _, err := dst.Write(line); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// cmdCheck 执行 check 命令：加载配置并打印解析结果。
func cmdCheck(w io.Writer, path string) error {
	cfg, err := xconf.Load(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "console:  %v\n", cfg.Console)
	fmt.Fprintf(w, "level:    %s\n", cfg.Level)
	fmt.Fprintf(w, "format:   %s\n", cfg.Format)

	if cfg.File == nil {
		fmt.Fprintln(w, "file:     (none)")
		return nil
	}

	trigger, err := cfg.File.Rotation.Trigger()
	if err != nil {
		return err
	}
	if err := trigger.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(w, "file:     %s\n", cfg.File.Path)
	fmt.Fprintf(w, "async:    %v\n", cfg.File.Async)
	fmt.Fprintf(w, "rotation: %s\n", trigger)
	return nil
}
