package diag

import (
	"context"
	"errors"
	"io/fs"
	"syscall"
	"time"

	"localk/pkg/contract"
)

// Code 是最小错误分类代码，用于日志/计数汇总。
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeArgument Code = "argument"
	CodeField    Code = "field"
	CodeRecord   Code = "record"
	CodeInput    Code = "input"
	CodeCancel   Code = "cancel"
	CodeIO       Code = "io"
)

// 进程退出码。
const (
	ExitOK       = 0
	ExitRuntime  = 1
	ExitArgument = 3
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, contract.ErrInvalidArgument):
		return CodeArgument
	case errors.Is(err, contract.ErrUnknownField):
		return CodeField
	case errors.Is(err, contract.ErrMalformedRecord), errors.Is(err, contract.ErrDimensionMismatch):
		return CodeRecord
	case errors.Is(err, contract.ErrEmptyInput):
		return CodeInput
	}
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, syscall.EPIPE) {
		return CodeIO
	}
	return CodeUnknown
}

// ExitCode 将错误映射为进程退出码：nil→0，参数错误→3，其余→1。
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, contract.ErrInvalidArgument):
		return ExitArgument
	default:
		return ExitRuntime
	}
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
