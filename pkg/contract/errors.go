package contract

import "errors"

// 最小错误分类（哨兵），调用方使用 errors.Is 匹配；禁止字符串匹配。
var (
	// ErrInvalidArgument: 启动参数缺失或不是实数。
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownField: 表头中的场名不属于已知的五种形状。
	ErrUnknownField = errors.New("unknown field")
	// ErrMalformedRecord: 数据行无法解析为期望数量的实数（非数值 token、列数不符）。
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDimensionMismatch: 导数向量与样本长度不一致。
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrEmptyInput: 输入在表头之前即结束。
	ErrEmptyInput = errors.New("empty input")
)
