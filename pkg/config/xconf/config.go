package xconf

import (
	"fmt"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// 轮转配置简写形式的默认值。
const (
	// DefaultMaxSize 简写形式的大小上限（10 MiB）。
	DefaultMaxSize = 10 << 20

	// DefaultMaxFiles 简写形式保留的归档数量。
	DefaultMaxFiles = 5
)

// LogConfig 日志配置。
// YAML/JSON 中对应顶层（或由调用方指定的子树）结构：
//
//	console: true
//	level: info
//	format: text
//	file:
//	  path: /var/log/app.log
//	  rotation: size
type LogConfig struct {
	// Console 是否输出到控制台。
	Console bool `koanf:"console"`

	// Level 日志级别（debug/info/warn/error），默认 info。
	Level string `koanf:"level"`

	// Format 输出格式（text/json），默认 text。
	Format string `koanf:"format"`

	// AddSource 是否携带调用位置。
	AddSource bool `koanf:"add_source"`

	// File 文件输出配置，nil 表示不写文件。
	File *FileConfig `koanf:"file"`
}

// FileConfig 文件输出配置。
type FileConfig struct {
	// Path 日志文件路径。
	Path string `koanf:"path"`

	// Async 是否经有界队列异步写入。
	Async bool `koanf:"async"`

	// QueueSize 异步队列容量，0 表示使用默认值。
	QueueSize int `koanf:"queue_size"`

	// Rotation 轮转配置。
	// 支持简写（字符串）与完整（映射）两种写法，由 decodeRotation 手工
	// 解析，不走结构体反序列化。
	Rotation RotationConfig `koanf:"-"`
}

// RotationConfig 已解析的轮转配置。
type RotationConfig struct {
	// Type 触发类型：never/size/time/both。
	Type string

	// Period 轮转周期，time/both 有效。
	Period xrotate.Period

	// MaxSize 大小上限（字节），size/both 有效。
	MaxSize int64

	// MaxFiles 保留的归档数量，size/both 有效。
	MaxFiles int
}

// Trigger 把解析结果转换为轮转触发条件。
func (r RotationConfig) Trigger() (xrotate.Trigger, error) {
	switch r.Type {
	case "", "never":
		return xrotate.TriggerNever(), nil
	case "size":
		return xrotate.TriggerSize(r.MaxSize, r.MaxFiles), nil
	case "time":
		return xrotate.TriggerTime(r.Period), nil
	case "both":
		return xrotate.TriggerBoth(r.Period, r.MaxSize, r.MaxFiles), nil
	default:
		return xrotate.Trigger{}, fmt.Errorf("%w: unknown rotation type %q", ErrInvalidRotation, r.Type)
	}
}

// defaultLogConfig 返回各字段的默认值。
func defaultLogConfig() *LogConfig {
	return &LogConfig{
		Console: false,
		Level:   "info",
		Format:  "text",
	}
}

// applyDefaults 补齐反序列化后缺省的字段。
func (c *LogConfig) applyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// DecodeRotation 解析 rotation 字段的两种写法。
//
// 简写形式是触发类型字符串，size/both 使用 DefaultMaxSize/DefaultMaxFiles、
// 周期为每日。完整形式是映射 {type, period, max_size, max_files}：
// time/both 必须给 period，size/both 必须给 max_size（数值按 KB 解释，
// 字符串支持 K/M/G 单位），max_files 缺省为 DefaultMaxFiles。
// 配置文件与命令行 flag 共用这一套语义。
func DecodeRotation(v any) (RotationConfig, error) {
	switch rv := v.(type) {
	case nil:
		return RotationConfig{Type: "never"}, nil
	case string:
		return decodeSimpleRotation(rv)
	case map[string]any:
		return decodeComplexRotation(rv)
	default:
		return RotationConfig{}, fmt.Errorf("%w: expected string or map, got %T", ErrInvalidRotation, v)
	}
}

func decodeSimpleRotation(typ string) (RotationConfig, error) {
	switch typ {
	case "never":
		return RotationConfig{Type: "never"}, nil
	case "size":
		return RotationConfig{Type: "size", MaxSize: DefaultMaxSize, MaxFiles: DefaultMaxFiles}, nil
	case "time":
		return RotationConfig{Type: "time", Period: xrotate.PeriodDaily}, nil
	case "both":
		return RotationConfig{
			Type:     "both",
			Period:   xrotate.PeriodDaily,
			MaxSize:  DefaultMaxSize,
			MaxFiles: DefaultMaxFiles,
		}, nil
	default:
		return RotationConfig{}, fmt.Errorf("%w: unknown rotation type %q", ErrInvalidRotation, typ)
	}
}

func decodeComplexRotation(m map[string]any) (RotationConfig, error) {
	typ, err := stringField(m, "type")
	if err != nil {
		return RotationConfig{}, err
	}
	if typ == "" || typ == "never" {
		return RotationConfig{Type: "never"}, nil
	}

	out := RotationConfig{Type: typ}

	needPeriod := typ == "time" || typ == "both"
	needSize := typ == "size" || typ == "both"
	if !needPeriod && !needSize {
		return RotationConfig{}, fmt.Errorf("%w: unknown rotation type %q", ErrInvalidRotation, typ)
	}

	if needPeriod {
		raw, ok := m["period"]
		if !ok {
			return RotationConfig{}, fmt.Errorf("%w: period is required for %s rotation", ErrInvalidRotation, typ)
		}
		s, sok := raw.(string)
		if !sok {
			return RotationConfig{}, fmt.Errorf("%w: period must be a string, got %T", ErrInvalidRotation, raw)
		}
		period, perr := xrotate.ParsePeriod(s)
		if perr != nil {
			return RotationConfig{}, fmt.Errorf("%w: %w", ErrInvalidRotation, perr)
		}
		out.Period = period
	}

	if needSize {
		raw, ok := m["max_size"]
		if !ok {
			return RotationConfig{}, fmt.Errorf("%w: max_size is required for %s rotation", ErrInvalidRotation, typ)
		}
		size, serr := decodeSizeValue(raw)
		if serr != nil {
			return RotationConfig{}, serr
		}
		out.MaxSize = size

		out.MaxFiles = DefaultMaxFiles
		if rawFiles, fok := m["max_files"]; fok {
			n, ferr := intField(rawFiles)
			if ferr != nil {
				return RotationConfig{}, fmt.Errorf("%w: max_files: %w", ErrInvalidRotation, ferr)
			}
			out.MaxFiles = n
		}
	}

	return out, nil
}

// decodeSizeValue 解析 max_size 字段：数值按 KB 解释，字符串走 ParseSize。
func decodeSizeValue(v any) (int64, error) {
	switch sv := v.(type) {
	case string:
		return ParseSize(sv)
	case int:
		return ParseSize(fmt.Sprintf("%d", sv))
	case int64:
		return ParseSize(fmt.Sprintf("%d", sv))
	case uint64:
		return ParseSize(fmt.Sprintf("%d", sv))
	case float64:
		// YAML/JSON 解析器可能把整数还原为 float64
		if sv != float64(int64(sv)) || sv < 0 {
			return 0, fmt.Errorf("%w: max_size must be a non-negative integer", ErrInvalidSize)
		}
		return ParseSize(fmt.Sprintf("%d", int64(sv)))
	default:
		return 0, fmt.Errorf("%w: max_size must be a number or string, got %T", ErrInvalidSize, v)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, sok := raw.(string)
	if !sok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidRotation, key, raw)
	}
	return s, nil
}

func intField(v any) (int, error) {
	switch iv := v.(type) {
	case int:
		return iv, nil
	case int64:
		return int(iv), nil
	case float64:
		if iv != float64(int(iv)) {
			return 0, fmt.Errorf("must be an integer, got %v", iv)
		}
		return int(iv), nil
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}
}
