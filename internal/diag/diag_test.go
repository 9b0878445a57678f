package diag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"localk/pkg/contract"
)

// UT-DIAG-01: 日志轮转写入
func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 30, 0)
	defer w.Close()
	if err := w.WriteLine([]byte("first line that is very long")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := w.WriteLine([]byte("second")); err != nil {
		t.Fatalf("第二次写入失败: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("应存在轮转文件, got %d", len(files))
	}
	b, err := os.ReadFile(filepath.Join(dir, "localk-current.txt"))
	if err != nil || string(b) != "second\n" {
		t.Fatalf("current 内容错误: %q %v", b, err)
	}
}

// 保留最近 keep 个历史文件
func TestRotatingFileKeep(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 10, 2)
	defer w.Close()
	for i := 0; i < 6; i++ {
		if err := w.WriteLine([]byte("xxxxxxxxxxxxxxxxxx")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	hasCurrent := false
	rotated := 0
	for _, e := range ents {
		switch {
		case e.Name() == "localk-current.txt":
			hasCurrent = true
		case strings.HasPrefix(e.Name(), "localk-") && strings.HasSuffix(e.Name(), ".txt"):
			rotated++
		}
	}
	if !hasCurrent || rotated != 2 {
		t.Fatalf("expect current + 2 rotated, got current=%v rotated=%d", hasCurrent, rotated)
	}
}

// 追加到已有 current 文件时沿用其大小
func TestRotatingFileReopen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "localk-current.txt"), []byte("0123456789\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewRotatingFile(dir, 12, 0)
	if err := w.WriteLine([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()
	ents, _ := os.ReadDir(dir)
	if len(ents) != 2 {
		t.Fatalf("已有文件应触发轮转, got %d entries", len(ents))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("重复 Close: %v", err)
	}
}

// 计数器
func TestMetrics(t *testing.T) {
	ResetMetrics()
	IncOp("pipeline", "finish", "success")
	IncOp("pipeline", "finish", "success")
	IncError("pipeline", "record")
	AddCount("pipeline", "rows", 5)
	ObserveDuration("pipeline", "finish", 7)
	snap := Snapshot()
	if snap["op_total{pipeline,finish,success}"] != 2 {
		t.Fatalf("op_total: %v", snap)
	}
	if snap["error_total{pipeline,record}"] != 1 || snap["rows{pipeline}"] != 5 || snap["op_duration_ms{pipeline,finish}"] != 7 {
		t.Fatalf("snapshot: %v", snap)
	}
	if SnapshotKV()["rows{pipeline}"] != "5" {
		t.Fatalf("kv: %v", SnapshotKV())
	}
	ResetMetrics()
	if len(Snapshot()) != 0 {
		t.Fatalf("reset 后应为空")
	}
}

// 错误分类
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{fmt.Errorf("x: %w", contract.ErrInvalidArgument), CodeArgument},
		{fmt.Errorf("column 1: %w", contract.ErrUnknownField), CodeField},
		{contract.ErrMalformedRecord, CodeRecord},
		{contract.ErrDimensionMismatch, CodeRecord},
		{contract.ErrEmptyInput, CodeInput},
		{context.Canceled, CodeCancel},
		{&fs.PathError{Op: "open", Path: "/", Err: errors.New("x")}, CodeIO},
		{fmt.Errorf("write: %w", syscall.EPIPE), CodeIO},
		{errors.New("other"), CodeUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v)=%s, 预期 %s", c.err, got, c.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatalf("nil 应为 0")
	}
	if ExitCode(fmt.Errorf("%w: x", contract.ErrInvalidArgument)) != 3 {
		t.Fatalf("参数错误应为 3")
	}
	for _, err := range []error{contract.ErrUnknownField, contract.ErrMalformedRecord, errors.New("io")} {
		if ExitCode(err) != 1 {
			t.Fatalf("%v 应为 1", err)
		}
	}
}

type memSink struct{ lines []string }

func (m *memSink) WriteLine(b []byte) error { m.lines = append(m.lines, string(b)); return nil }

// Logger 基本流程与级别过滤
func TestLogger(t *testing.T) {
	sink := &memSink{}
	l := NewLogger("corr", "info", sink)
	timer := l.Start("comp", "msg")
	timer.Finish("ok", 3)
	_ = l.StartWithKV("comp", "msg", map[string]string{"k": "v"})
	l.Error("comp", "code", "boom", nil)
	l.ErrorRow("comp", "record", "bad row", 7)
	l.Warn("comp", "warned", nil)
	l.DebugStart("comp", "hidden", nil) // info 级别下不输出
	if len(sink.lines) != 6 {
		t.Fatalf("expect 6 events, got %d: %v", len(sink.lines), sink.lines)
	}
	var ev Event
	if err := json.Unmarshal([]byte(sink.lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Stage != "finish" || ev.Count != 3 || ev.CorrID != "corr" || ev.Level != "info" {
		t.Fatalf("finish event: %+v", ev)
	}
	if err := json.Unmarshal([]byte(sink.lines[4]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Row != 7 || ev.Code != "record" || ev.Level != "error" {
		t.Fatalf("error row event: %+v", ev)
	}

	l = NewLogger("corr", "error", sink)
	sink.lines = nil
	l.Start("comp", "x").Finish("y", 0)
	l.Error("comp", "code", "z", nil)
	if len(sink.lines) != 1 {
		t.Fatalf("error 级别应仅输出 error 事件: %v", sink.lines)
	}
}

// nil Logger / 无 sink 时不 panic
func TestLoggerNil(t *testing.T) {
	var l *Logger
	l.Start("c", "m").Finish("m", 1)
	l.Error("c", "x", "m", nil)
	n := NewLogger("c", "debug", nil)
	n.DebugStart("c", "m", nil)
	var tm *Timer
	tm.Finish("m", 0)
	if tm.Since() != 0 {
		t.Fatalf("nil timer Since 应为 0")
	}
	start := time.Now()
	NewLogger("c", "info", &memSink{}).Error("c", "x", "m", &start)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": Debug, "INFO": Info, "": Info, " warn ": Warn, "error": Error} {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q)=%v,%v", in, got, ok)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Fatalf("未知级别应返回 false")
	}
	if Level(42).String() != "info" {
		t.Fatalf("未知 Level 字符串应为 info")
	}
}

func TestNowUTC(t *testing.T) {
	if _, err := time.Parse(time.RFC3339, NowUTC()); err != nil {
		t.Fatalf("应返回 RFC3339: %v", err)
	}
}
