package lines

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"localk/pkg/contract"
)

// Options 为行式 Reader 的可选配置。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int
}

// Reader 以换行为记录边界、按 ',' 切分字段；不识别引号。
// 行尾 "\r\n" 与 "\n" 均可；空白行跳过（与 csv 帧一致）。
// 返回的 Sample 在下一次 Next 前有效。
type Reader struct {
	br     *bufio.Reader
	row    int64
	buf    contract.Sample
	header bool
	eof    bool
}

var _ contract.Reader = (*Reader)(nil)

// New 创建行式 Reader。
func New(r io.Reader, opts *Options) *Reader {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &Reader{br: bufio.NewReaderSize(r, b)}
}

// nextLine 返回下一条非空行（已去除行尾）；输入结束返回 io.EOF。
func (r *Reader) nextLine() (string, error) {
	for !r.eof {
		line, err := r.br.ReadString('\n')
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}
	return "", io.EOF
}

// Header 读取首条非空行作为场名列表。
func (r *Reader) Header() ([]string, error) {
	if r.header {
		return nil, errors.New("lines: header already read")
	}
	r.header = true
	line, err := r.nextLine()
	if err == io.EOF {
		return nil, contract.ErrEmptyInput
	}
	if err != nil {
		return nil, err
	}
	names := strings.Split(line, ",")
	for i, s := range names {
		names[i] = strings.TrimSpace(s)
	}
	return names, nil
}

// Next 读取下一条数据行并解析为实数。
func (r *Reader) Next() (contract.Sample, error) {
	line, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	r.row++
	r.buf = r.buf[:0]
	col := 0
	for rest := line; ; {
		tok, tail, more := strings.Cut(rest, ",")
		col++
		v, perr := contract.ParseValue(tok)
		if perr != nil {
			return nil, fmt.Errorf("%w: row %d column %d: %q is not a number", contract.ErrMalformedRecord, r.row, col, tok)
		}
		r.buf = append(r.buf, v)
		if !more {
			break
		}
		rest = tail
	}
	return r.buf, nil
}
