package xlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/config/xconf"
)

func TestFromConfig(t *testing.T) {
	t.Run("文件输出带轮转", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		data := []byte(`{
  "level": "debug",
  "format": "json",
  "file": {
    "path": ` + jsonString(path) + `,
    "rotation": "size"
  }
}`)

		cfg, err := xconf.LoadBytes(data, xconf.FormatJSON)
		require.NoError(t, err)

		logger, cleanup, err := FromConfig(cfg, nil)
		require.NoError(t, err)

		assert.Equal(t, LevelDebug, logger.GetLevel())
		logger.Debug(context.Background(), "from config")
		require.NoError(t, cleanup())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "from config")
	})

	t.Run("异步文件输出", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		cfg := &xconf.LogConfig{
			Level:  "info",
			Format: "text",
			File: &xconf.FileConfig{
				Path:      path,
				Async:     true,
				QueueSize: 128,
				Rotation:  xconf.RotationConfig{Type: "never"},
			},
		}

		logger, cleanup, err := FromConfig(cfg, nil)
		require.NoError(t, err)

		logger.Info(context.Background(), "async record")
		require.NoError(t, cleanup())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "async record")
	})

	t.Run("仅控制台", func(t *testing.T) {
		cfg := &xconf.LogConfig{Console: true, Level: "warn", Format: "text"}

		logger, cleanup, err := FromConfig(cfg, nil)
		require.NoError(t, err)
		defer func() { _ = cleanup() }()

		assert.Equal(t, LevelWarn, logger.GetLevel())
	})

	t.Run("非法级别", func(t *testing.T) {
		cfg := &xconf.LogConfig{Console: true, Level: "loud", Format: "text"}
		_, _, err := FromConfig(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("非法轮转类型", func(t *testing.T) {
		cfg := &xconf.LogConfig{
			Level:  "info",
			Format: "text",
			File: &xconf.FileConfig{
				Path:     filepath.Join(t.TempDir(), "x.log"),
				Rotation: xconf.RotationConfig{Type: "bogus"},
			},
		}
		_, _, err := FromConfig(cfg, nil)
		assert.ErrorIs(t, err, xconf.ErrInvalidRotation)
	})
}

// jsonString 简易 JSON 字符串字面量（路径不含引号和反斜杠时可用）
func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}
