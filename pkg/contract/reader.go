package contract

// Reader: 表格输入的记录级抽象（按帧格式实现：csv/lines）。
// 约束：
// 1) 流式读取，一次一条记录，额外内存 O(列数)；
// 2) Header 仅调用一次，且必须先于 Next；
// 3) Next 在输入结束时返回 io.EOF；非数值 token 返回包装 ErrMalformedRecord 的错误；
// 4) 不做列数校验（由投影阶段对齐表头负责）；
// 5) 不在内部起并发。
type Reader interface {
	Header() ([]string, error)
	Next() (Sample, error)
}
