package xlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

func TestBuilderDefaults(t *testing.T) {
	logger, cleanup, err := New().Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	assert.Equal(t, LevelInfo, logger.GetLevel())
}

func TestBuilderFirstErrorWins(t *testing.T) {
	// 第一个配置错误之后的设置不覆盖错误
	_, _, err := New().
		SetLevelString("bogus").
		SetFormat("json").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestBuilderFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &syncBuffer{}
		logger, cleanup, err := New().SetOutput(buf).SetFormat("json").Build()
		require.NoError(t, err)
		defer func() { _ = cleanup() }()

		logger.Info(context.Background(), "hello")
		assert.True(t, strings.HasPrefix(buf.String(), "{"))
	})

	t.Run("text", func(t *testing.T) {
		buf := &syncBuffer{}
		logger, cleanup, err := New().SetOutput(buf).SetFormat("text").Build()
		require.NoError(t, err)
		defer func() { _ = cleanup() }()

		logger.Info(context.Background(), "hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("空格式回退默认", func(t *testing.T) {
		_, cleanup, err := New().SetFormat("").Build()
		require.NoError(t, err)
		_ = cleanup()
	})

	t.Run("未知格式", func(t *testing.T) {
		_, _, err := New().SetFormat("xml").Build()
		assert.Error(t, err)
	})
}

func TestBuilderNilOutput(t *testing.T) {
	_, _, err := New().SetOutput(nil).Build()
	assert.Error(t, err)
}

func TestBuilderNoOutput(t *testing.T) {
	_, _, err := New().SetConsole(false).Build()
	assert.Error(t, err)
}

func TestBuilderSetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New().
		SetConsole(false).
		SetFormat("json").
		SetFile(path, xrotate.TriggerNever()).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "to file")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	t.Run("非法轮转配置", func(t *testing.T) {
		_, _, err := New().
			SetFile(filepath.Join(t.TempDir(), "x.log"), xrotate.TriggerSize(0, 1)).
			Build()
		assert.ErrorIs(t, err, xrotate.ErrInvalidMaxSize)
	})
}

func TestBuilderConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	buf := &syncBuffer{}

	logger, cleanup, err := New().
		SetOutput(buf).
		SetFile(path, xrotate.TriggerNever()).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "fan out")
	require.NoError(t, cleanup())

	assert.Contains(t, buf.String(), "fan out")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fan out")
}

func TestBuilderAsyncFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New().
		SetConsole(false).
		SetFile(path, xrotate.TriggerNever()).
		SetAsync(256).
		Build()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		logger.Info(context.Background(), "queued")
	}
	// cleanup 先排空队列再关文件
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(string(data), "queued"))
}

func TestBuilderCleanupIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New().
		SetConsole(false).
		SetFile(path, xrotate.TriggerNever()).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "once")
	assert.NoError(t, cleanup())
	assert.NoError(t, cleanup())
}

func TestBuilderSetRotator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rot, err := xrotate.NewWriter(path, xrotate.TriggerNever())
	require.NoError(t, err)

	logger, cleanup, err := New().
		SetConsole(false).
		SetRotator(rot).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "injected rotator")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "injected rotator")
}
