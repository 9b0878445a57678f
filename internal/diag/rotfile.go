package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	currentName   = "localk-current.txt"
	rotatedPrefix = "localk-"
	rotatedSuffix = ".txt"
)

// RotatingFile 将日志行追加到 dir/localk-current.txt，按大小轮转：
// 写入将超过 maxBytes 时，当前文件改名为 localk-<UTC 时间戳>.txt 并重新创建。
// keep>0 时仅保留最近 keep 个历史文件。
type RotatingFile struct {
	dir      string
	maxBytes int64
	keep     int

	mu      sync.Mutex
	f       *os.File
	curSize int64
}

var _ LineSink = (*RotatingFile)(nil)

// NewRotatingFile 构造轮转文件；maxBytes<=0 时默认 10MiB。首次写入时才创建目录与文件。
func NewRotatingFile(dir string, maxBytes int64, keep int) *RotatingFile {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &RotatingFile{dir: dir, maxBytes: maxBytes, keep: keep}
}

// WriteLine 追加一行（自动补换行）。
func (w *RotatingFile) WriteLine(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.open(); err != nil {
		return err
	}
	line := append(b[:len(b):len(b)], '\n')
	if w.curSize > 0 && w.curSize+int64(len(line)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	n, err := w.f.Write(line)
	w.curSize += int64(n)
	return err
}

func (w *RotatingFile) open() error {
	if w.f != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(w.dir, currentName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.curSize = 0
	if st, err := f.Stat(); err == nil {
		w.curSize = st.Size()
	}
	return nil
}

func (w *RotatingFile) rotate() error {
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	// 纳秒精度时间戳，避免同秒轮转互相覆盖
	ts := time.Now().UTC().Format("20060102-150405.000000000")
	from := filepath.Join(w.dir, currentName)
	to := filepath.Join(w.dir, rotatedPrefix+ts+rotatedSuffix)
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename rotated file: %w", err)
	}
	if err := w.prune(); err != nil {
		return err
	}
	return w.open()
}

// prune 删除超出 keep 的最旧历史文件（时间戳名按字典序即时间序）。
func (w *RotatingFile) prune() error {
	if w.keep <= 0 {
		return nil
	}
	ents, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	var old []string
	for _, e := range ents {
		n := e.Name()
		if n != currentName && strings.HasPrefix(n, rotatedPrefix) && strings.HasSuffix(n, rotatedSuffix) {
			old = append(old, n)
		}
	}
	if len(old) <= w.keep {
		return nil
	}
	sort.Strings(old)
	for _, n := range old[:len(old)-w.keep] {
		if err := os.Remove(filepath.Join(w.dir, n)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close 关闭当前打开的文件句柄。
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
