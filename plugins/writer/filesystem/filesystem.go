package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Options: 最小必要选项。
type Options struct {
	// Atomic: 是否使用原子替换（同目录临时文件 + rename）。
	// 默认 true；显式 false 时直接截断写目标文件。
	Atomic *bool
	// PermFile/PermDir: 可选权限；为 0 表示使用默认 0644/0755。
	PermFile os.FileMode
	PermDir  os.FileMode
}

// File 为输出文件目标。Atomic 模式下内容先写入同目录临时文件，
// Commit 时整体替换目标；Abort 删除临时文件，目标保持原状。
type File struct {
	dest   string
	tmp    string
	f      *os.File
	atomic bool
	done   bool
}

// Create 打开 path 作为输出目标（父目录不存在时创建）。
func Create(path string, opts *Options) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, os.ErrInvalid
	}
	pf, pd, atomic := os.FileMode(0o644), os.FileMode(0o755), true
	if opts != nil {
		if opts.PermFile != 0 {
			pf = opts.PermFile
		}
		if opts.PermDir != 0 {
			pd = opts.PermDir
		}
		if opts.Atomic != nil {
			atomic = *opts.Atomic
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, pd); err != nil {
		return nil, err
	}
	if !atomic {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, pf)
		if err != nil {
			return nil, err
		}
		return &File{dest: path, f: f}, nil
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, err
	}
	// 目标权限：尽量与期望一致
	_ = os.Chmod(tmp.Name(), pf)
	return &File{dest: path, tmp: tmp.Name(), f: tmp, atomic: true}, nil
}

func (w *File) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.f.Write(p)
}

// Commit 落盘并（Atomic 模式）替换目标。重复调用返回 os.ErrClosed。
func (w *File) Commit() error {
	if w.done {
		return os.ErrClosed
	}
	w.done = true
	if !w.atomic {
		return w.f.Close()
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		_ = os.Remove(w.tmp)
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.tmp)
		return err
	}
	if err := osReplace(w.tmp, w.dest); err != nil {
		_ = os.Remove(w.tmp)
		return err
	}
	// 最佳努力：同步父目录，提升崩溃安全性
	_ = syncDir(filepath.Dir(w.dest))
	return nil
}

// Abort 放弃输出：Atomic 模式删除临时文件；否则仅关闭（已写内容保留）。
// 在 Commit 之后调用为 no-op。
func (w *File) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	err := w.f.Close()
	if w.atomic {
		if rerr := os.Remove(w.tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
			err = rerr
		}
	}
	return err
}
