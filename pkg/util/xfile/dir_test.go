package xfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureDir 测试父目录创建
func TestEnsureDir(t *testing.T) {
	t.Run("创建多级父目录", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "a", "b", "c", "app.log")

		require.NoError(t, EnsureDir(filename))

		info, err := os.Stat(filepath.Dir(filename))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("目录已存在不报错", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "app.log")

		require.NoError(t, EnsureDir(filename))
		require.NoError(t, EnsureDir(filename))
	})

	t.Run("当前目录文件是快速路径", func(t *testing.T) {
		require.NoError(t, EnsureDir("app.log"))
	})

	t.Run("空文件名", func(t *testing.T) {
		err := EnsureDir("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("空字节", func(t *testing.T) {
		err := EnsureDir("a\x00/app.log")
		assert.ErrorIs(t, err, ErrNullByte)
	})
}

// TestEnsureDirWithPerm 测试带权限的目录创建
func TestEnsureDirWithPerm(t *testing.T) {
	t.Run("缺少所有者执行位被拒绝", func(t *testing.T) {
		err := EnsureDirWithPerm("logs/app.log", 0600)
		assert.ErrorIs(t, err, ErrInvalidPerm)
	})

	t.Run("指定权限创建", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "logs", "app.log")

		require.NoError(t, EnsureDirWithPerm(filename, 0700))

		info, err := os.Stat(filepath.Dir(filename))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
