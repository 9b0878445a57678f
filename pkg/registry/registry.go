package registry

import (
	"io"
	"sort"

	"localk/pkg/contract"
	rcsv "localk/plugins/reader/csv"
	rlines "localk/plugins/reader/lines"
	wcsv "localk/plugins/writer/csv"
	wlines "localk/plugins/writer/lines"
)

// NewReader 工厂签名：包装输入字节流。
type NewReader func(r io.Reader) contract.Reader

// NewWriter 工厂签名：包装输出字节流。
type NewWriter func(w io.Writer) contract.Writer

// Reader 工厂注册表（显式、零反射），键为帧格式名。
var Reader = map[string]NewReader{
	// csv: RFC 4180（支持引号字段）
	"csv": func(r io.Reader) contract.Reader { return rcsv.New(r, nil) },
	// lines: 每行一条记录，按 ',' 切分
	"lines": func(r io.Reader) contract.Reader { return rlines.New(r, nil) },
}

// Writer 工厂注册表；与 Reader 使用同一组帧格式名。
var Writer = map[string]NewWriter{
	"csv":   func(w io.Writer) contract.Writer { return wcsv.New(w, nil) },
	"lines": func(w io.Writer) contract.Writer { return wlines.New(w, nil) },
}

// Framings 返回同时注册了 Reader 与 Writer 的帧格式名（字典序）。
func Framings() []string {
	out := make([]string, 0, len(Reader))
	for name := range Reader {
		if Writer[name] != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
