package contract

import (
	"strconv"
	"strings"
)

// AppendValue 以可往返的最短十进制（无指数）形式追加 v。
func AppendValue(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', -1, 64)
}

// FormatValue 为 AppendValue 的字符串形式。
func FormatValue(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ParseValue 解析单个数值 token（去除首尾空白）。
func ParseValue(tok string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(tok), 64)
}
