package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfigFile(t, "logging.yaml", `
console: true
level: debug
format: json
add_source: true
file:
  path: /var/log/app.log
  async: true
  queue_size: 2048
  rotation:
    type: both
    period: daily
    max_size: 50M
    max_files: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Console)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.AddSource)

	require.NotNil(t, cfg.File)
	assert.Equal(t, "/var/log/app.log", cfg.File.Path)
	assert.True(t, cfg.File.Async)
	assert.Equal(t, 2048, cfg.File.QueueSize)
	assert.Equal(t, "both", cfg.File.Rotation.Type)
	assert.Equal(t, xrotate.PeriodDaily, cfg.File.Rotation.Period)
	assert.Equal(t, int64(50<<20), cfg.File.Rotation.MaxSize)
	assert.Equal(t, 7, cfg.File.Rotation.MaxFiles)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfigFile(t, "logging.json", `{
  "level": "warn",
  "file": {
    "path": "/var/log/app.log",
    "rotation": "size"
  }
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Level)
	require.NotNil(t, cfg.File)
	assert.Equal(t, "size", cfg.File.Rotation.Type)
	assert.Equal(t, int64(DefaultMaxSize), cfg.File.Rotation.MaxSize)
	assert.Equal(t, DefaultMaxFiles, cfg.File.Rotation.MaxFiles)
}

func TestLoadDefaults(t *testing.T) {
	t.Run("空文件返回全默认", func(t *testing.T) {
		path := writeConfigFile(t, "logging.yaml", "")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.False(t, cfg.Console)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "text", cfg.Format)
		assert.Nil(t, cfg.File)
	})

	t.Run("file 缺 rotation 即 never", func(t *testing.T) {
		path := writeConfigFile(t, "logging.yaml", "file:\n  path: /tmp/app.log\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		require.NotNil(t, cfg.File)
		assert.Equal(t, "never", cfg.File.Rotation.Type)
	})
}

func TestLoadErrors(t *testing.T) {
	t.Run("空路径", func(t *testing.T) {
		_, err := Load("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("未知扩展名", func(t *testing.T) {
		_, err := Load("/etc/app/logging.toml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)
	})

	t.Run("语法错误", func(t *testing.T) {
		path := writeConfigFile(t, "logging.yaml", "level: [unclosed\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrParseFailed)
	})

	t.Run("轮转配置非法", func(t *testing.T) {
		path := writeConfigFile(t, "logging.yaml", `
file:
  path: /tmp/app.log
  rotation:
    type: size
`)
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidRotation)
	})
}

func TestLoadBytes(t *testing.T) {
	t.Run("显式指定格式", func(t *testing.T) {
		cfg, err := LoadBytes([]byte(`{"level":"error","console":true}`), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Level)
		assert.True(t, cfg.Console)
	})

	t.Run("空数据返回全默认", func(t *testing.T) {
		cfg, err := LoadBytes(nil, FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Level)
	})

	t.Run("非法格式", func(t *testing.T) {
		_, err := LoadBytes([]byte("level: info"), Format("toml"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoaderReload(t *testing.T) {
	path := writeConfigFile(t, "logging.yaml", "level: info\n")

	loader, err := NewLoader(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, loader.Format())
	assert.Equal(t, path, loader.Path())
	assert.Equal(t, "info", loader.Config().Level)

	require.NoError(t, os.WriteFile(path, []byte("level: debug\n"), 0600))
	require.NoError(t, loader.Reload())
	assert.Equal(t, "debug", loader.Config().Level)

	t.Run("解析失败保留旧配置", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("level: [broken\n"), 0600))
		assert.ErrorIs(t, loader.Reload(), ErrParseFailed)
		assert.Equal(t, "debug", loader.Config().Level)
	})
}
