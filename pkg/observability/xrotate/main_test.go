package xrotate

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain 在所有测试完成后检测 goroutine 泄漏。
// AsyncWriter 的消费协程必须随 Close 退出，任何残留都是缺陷。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
