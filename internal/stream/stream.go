// Package stream 将原始输入字节流归一为 UTF-8 文本流：
// 按魔数识别并透明解压（gzip/zstd/lz4 帧），随后处理 BOM（UTF-8/UTF-16）。
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Compression 为识别出的压缩格式。
type Compression uint8

const (
	None Compression = iota
	Gzip
	Zstd
	LZ4
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect 依据前缀字节判断压缩格式。
func Detect(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, magicZstd):
		return Zstd
	case bytes.HasPrefix(prefix, magicLZ4):
		return LZ4
	case bytes.HasPrefix(prefix, magicGzip):
		return Gzip
	}
	return None
}

// Input 为归一后的输入流；Close 释放解压器（不关闭底层 r）。
type Input struct {
	io.Reader
	Compression Compression
	closer      func()
}

func (in *Input) Close() error {
	if in.closer != nil {
		in.closer()
		in.closer = nil
	}
	return nil
}

// Open 包装 r。bufSize<=0 时使用 64KiB。
func Open(r io.Reader, bufSize int) (*Input, error) {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	br := bufio.NewReaderSize(r, bufSize)
	prefix, err := br.Peek(len(magicZstd))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniff input: %w", err)
	}
	in := &Input{Compression: Detect(prefix)}
	var dec io.Reader
	switch in.Compression {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		dec = zr
		in.closer = func() { _ = zr.Close() }
	case Zstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		dec = zr
		in.closer = zr.Close
	case LZ4:
		dec = lz4.NewReader(br)
	default:
		dec = br
	}
	// 无 BOM 时按 UTF-8 解码（非法字节替换为 U+FFFD，随后在数值解析处报错）
	in.Reader = transform.NewReader(dec, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return in, nil
}
