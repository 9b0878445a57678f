package csv

import (
	stdcsv "encoding/csv"
	"io"

	"localk/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// Comma: 字段分隔符；0 表示 ','。
	Comma rune
	// UseCRLF: 使用 "\r\n" 作为记录结束符。
	UseCRLF bool
}

// Writer 基于 encoding/csv 写出记录（内部已带缓冲）。
type Writer struct {
	w   *stdcsv.Writer
	rec [2]string
}

var _ contract.Writer = (*Writer)(nil)

// New 创建 CSV Writer。
func New(w io.Writer, opts *Options) *Writer {
	cw := stdcsv.NewWriter(w)
	if opts != nil {
		if opts.Comma != 0 {
			cw.Comma = opts.Comma
		}
		cw.UseCRLF = opts.UseCRLF
	}
	return &Writer{w: cw}
}

func (w *Writer) WriteHeader(names []string) error {
	return w.w.Write(names)
}

func (w *Writer) Write(out contract.Output) error {
	w.rec[0] = contract.FormatValue(out.K1)
	w.rec[1] = contract.FormatValue(out.K2)
	return w.w.Write(w.rec[:])
}

// Flush 冲刷缓冲并返回期间出现的首个写错误。
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
