package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"localk/pkg/contract"
)

// Options 为 CSV Reader 的可选配置（最小必要）。
type Options struct {
	// Comma: 字段分隔符；0 表示 ','。
	Comma rune
}

// Reader 基于 encoding/csv（RFC 4180）实现 contract.Reader。
// - 支持引号字段；空行由 encoding/csv 跳过；
// - 不限制每行字段数（列数由投影阶段对齐表头校验）；
// - 返回的 Sample 在下一次 Next 前有效。
type Reader struct {
	r      *stdcsv.Reader
	row    int64
	buf    contract.Sample
	header bool
}

var _ contract.Reader = (*Reader)(nil)

// New 创建 CSV Reader。
func New(r io.Reader, opts *Options) *Reader {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	if opts != nil && opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	return &Reader{r: cr}
}

// Header 读取首条记录作为场名列表。
func (r *Reader) Header() ([]string, error) {
	if r.header {
		return nil, errors.New("csv: header already read")
	}
	r.header = true
	rec, err := r.r.Read()
	if err == io.EOF {
		return nil, contract.ErrEmptyInput
	}
	if err != nil {
		return nil, wrapParse(err, 0)
	}
	out := make([]string, len(rec))
	for i, s := range rec {
		out[i] = strings.TrimSpace(s)
	}
	return out, nil
}

// Next 读取下一条数据记录并解析为实数。
func (r *Reader) Next() (contract.Sample, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.row++
	if err != nil {
		return nil, wrapParse(err, r.row)
	}
	r.buf = r.buf[:0]
	for i, tok := range rec {
		v, perr := contract.ParseValue(tok)
		if perr != nil {
			return nil, fmt.Errorf("%w: row %d column %d: %q is not a number", contract.ErrMalformedRecord, r.row, i+1, tok)
		}
		r.buf = append(r.buf, v)
	}
	return r.buf, nil
}

// wrapParse 将 encoding/csv 的语法错误归为 ErrMalformedRecord；其他错误（I/O）原样上抛。
func wrapParse(err error, row int64) error {
	var pe *stdcsv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: row %d: %v", contract.ErrMalformedRecord, row, pe.Err)
	}
	return err
}
