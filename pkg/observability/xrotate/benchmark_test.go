package xrotate

import (
	"path/filepath"
	"testing"
)

func BenchmarkWriterWrite(b *testing.B) {
	w, err := NewWriter(filepath.Join(b.TempDir(), "bench.log"), TriggerNever())
	if err != nil {
		b.Fatal(err)
	}
	defer w.Close()

	line := []byte("benchmark log line with a typical payload length for records\n")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.Write(line); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriterWriteWithRotation(b *testing.B) {
	// 每 1 MiB 轮转一次，覆盖轮转路径的摊销成本
	w, err := NewWriter(filepath.Join(b.TempDir(), "bench.log"), TriggerSize(1<<20, 2))
	if err != nil {
		b.Fatal(err)
	}
	defer w.Close()

	line := []byte("benchmark log line with a typical payload length for records\n")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.Write(line); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAsyncWrite(b *testing.B) {
	w, err := NewWriter(filepath.Join(b.TempDir(), "bench.log"), TriggerNever())
	if err != nil {
		b.Fatal(err)
	}
	a, err := NewAsync(w, WithQueueSize(8192))
	if err != nil {
		b.Fatal(err)
	}
	defer a.Close()

	line := []byte("benchmark log line with a typical payload length for records\n")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Write(line); err != nil {
			b.Fatal(err)
		}
	}
}
