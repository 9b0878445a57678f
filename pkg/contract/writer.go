package contract

// Writer: 将输出记录按帧格式写到目标流。
// 约束：
//  1. 单写者，按调用顺序写出，不重排；
//  2. 允许内部缓冲，Flush 后保证已写记录落到底层流；
//  3. 错误直接上抛（不做重试/回退）。
type Writer interface {
	WriteHeader(names []string) error
	Write(out Output) error
	Flush() error
}
