package xlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLazyInit(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	l := Default()
	require.NotNil(t, l)
	// 二次调用走快速路径，返回同一实例
	assert.Same(t, l, Default())
	assert.Equal(t, LevelInfo, l.GetLevel())
}

func TestSetDefault(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	buf := &syncBuffer{}
	logger, cleanup, err := New().SetOutput(buf).Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	SetDefault(logger)
	assert.Same(t, logger, Default())

	Info(context.Background(), "through global")
	assert.Contains(t, buf.String(), "through global")

	t.Run("nil 被忽略", func(t *testing.T) {
		SetDefault(nil)
		assert.Same(t, logger, Default())
	})
}

func TestGlobalFunctions(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	buf := &syncBuffer{}
	logger, cleanup, err := New().SetOutput(buf).SetLevel(LevelDebug).Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()
	SetDefault(logger)

	ctx := context.Background()
	Debug(ctx, "g-debug")
	Info(ctx, "g-info")
	Warn(ctx, "g-warn")
	Error(ctx, "g-error")

	out := buf.String()
	for _, msg := range []string{"g-debug", "g-info", "g-warn", "g-error"} {
		assert.Contains(t, out, msg)
	}
}

func TestResetDefault(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	first := Default()
	ResetDefault()
	second := Default()
	assert.NotSame(t, first, second)
}

func TestGlobalConcurrentAccess(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = Default()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
