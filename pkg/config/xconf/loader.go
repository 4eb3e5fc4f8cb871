package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// delim 配置键分隔符，例如 "file.rotation"。
const delim = "."

// Load 从文件加载日志配置。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func Load(path string) (*LogConfig, error) {
	loader, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return loader.Config(), nil
}

// LoadBytes 从字节数据加载日志配置。
// 需要显式指定格式，适用于 K8s ConfigMap 等场景。
// 空数据返回全默认配置，与 Load 读取空文件的行为一致。
func LoadBytes(data []byte, format Format) (*LogConfig, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	return parseConfig(data, format)
}

// Loader 可重载的配置加载器，持有最近一次成功解析的结果。
// 与 Watch 配合实现配置热更新。
type Loader struct {
	path   string
	format Format

	mu  sync.RWMutex
	cfg *LogConfig
}

// NewLoader 创建文件配置加载器并完成首次加载。
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	l := &Loader{path: path, format: format}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Config 返回最近一次成功加载的配置。
// 返回的是快照指针，Reload 之后需要重新获取。
func (l *Loader) Config() *LogConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Path 返回配置文件路径。
func (l *Loader) Path() string {
	return l.path
}

// Format 返回配置格式。
func (l *Loader) Format() Format {
	return l.format
}

// Reload 重新读取并解析配置文件。
// 解析失败时保留旧配置，此方法是并发安全的。
func (l *Loader) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	cfg, err := parseConfig(data, l.format)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return nil
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// parseConfig 解析配置数据为 LogConfig。
func parseConfig(data []byte, format Format) (*LogConfig, error) {
	k := koanf.New(delim)

	// 空数据直接返回默认配置
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}

	cfg := defaultLogConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	cfg.applyDefaults()

	// rotation 字段形态不定（字符串或映射），从原始树上手工解析
	if cfg.File != nil {
		rotation, err := DecodeRotation(k.Get("file" + delim + "rotation"))
		if err != nil {
			return nil, err
		}
		cfg.File.Rotation = rotation
	}

	return cfg, nil
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
