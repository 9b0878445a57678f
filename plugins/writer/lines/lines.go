package lines

import (
	"bufio"
	"io"
	"strings"

	"localk/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// BufSize: 写缓冲区大小；<=0 使用实现默认。
	BufSize int
}

// Writer 逐行写出 "k1,k2"；不做引号转义。
type Writer struct {
	bw  *bufio.Writer
	buf []byte
}

var _ contract.Writer = (*Writer)(nil)

// New 创建行式 Writer。
func New(w io.Writer, opts *Options) *Writer {
	bsz := 64 * 1024
	if opts != nil && opts.BufSize > 0 {
		bsz = opts.BufSize
	}
	return &Writer{bw: bufio.NewWriterSize(w, bsz), buf: make([]byte, 0, 64)}
}

func (w *Writer) WriteHeader(names []string) error {
	if _, err := w.bw.WriteString(strings.Join(names, ",")); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *Writer) Write(out contract.Output) error {
	b := contract.AppendValue(w.buf[:0], out.K1)
	b = append(b, ',')
	b = contract.AppendValue(b, out.K2)
	b = append(b, '\n')
	w.buf = b
	_, err := w.bw.Write(b)
	return err
}

func (w *Writer) Flush() error { return w.bw.Flush() }
