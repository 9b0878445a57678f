package contract

// Point: 求值点 (x, y)。单次运行内不可变，启动时一次性给定。
type Point struct {
	X float64
	Y float64
}

// Derivative: 某个编码场在求值点处的梯度 (∂/∂x, ∂/∂y)。
// 每列一个；由表头一次性计算，运行期只读。
type Derivative struct {
	DX float64
	DY float64
}

// Sample: 一条数据记录（每列一个幅值）。仅在处理该行期间存在。
type Sample []float64

// Output: 一条样本的局部 k 空间贡献 (k1, k2)。写出后即丢弃。
type Output struct {
	K1 float64
	K2 float64
}

// OutputHeader 为输出流固定的首条记录。
var OutputHeader = []string{"k1", "k2"}
