// Package field 定义编码场形状（封闭枚举）及其在求值点处的解析梯度。
package field

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"localk/pkg/contract"
)

// Shape 为编码场形状的封闭枚举；零值无效。
type Shape uint8

const (
	invalid Shape = iota
	// X: f = x
	X
	// Y: f = y
	Y
	// X2pY2: f = (x² + y²) / 2
	X2pY2
	// X2mY2: f = x² − y²
	X2mY2
	// X2Y2: f = 2xy（名称沿用既有数据约定）
	X2Y2
)

var names = [...]string{
	X:     "X",
	Y:     "Y",
	X2pY2: "X2pY2",
	X2mY2: "X2mY2",
	X2Y2:  "X2Y2",
}

// Shapes 按声明顺序返回全部形状。
func Shapes() []Shape { return []Shape{X, Y, X2pY2, X2mY2, X2Y2} }

func (s Shape) String() string {
	if s > invalid && int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Parse 将场名解析为 Shape。
// fold=false 时大小写敏感（默认策略）；fold=true 时按 Unicode case folding 比较。
// 名称前后空白会被去除。
func Parse(name string, fold bool) (Shape, error) {
	n := strings.TrimSpace(name)
	if fold {
		c := cases.Fold()
		n = c.String(n)
		for _, s := range Shapes() {
			if c.String(names[s]) == n {
				return s, nil
			}
		}
	} else {
		for _, s := range Shapes() {
			if names[s] == n {
				return s, nil
			}
		}
	}
	return invalid, fmt.Errorf("%w: %q", contract.ErrUnknownField, name)
}

// Derivative 返回形状在 p 处的梯度。对合法 Shape 为全函数。
func (s Shape) Derivative(p contract.Point) contract.Derivative {
	switch s {
	case X:
		return contract.Derivative{DX: 1, DY: 0}
	case Y:
		return contract.Derivative{DX: 0, DY: 1}
	case X2pY2:
		return contract.Derivative{DX: p.X, DY: p.Y}
	case X2mY2:
		return contract.Derivative{DX: 2 * p.X, DY: -2 * p.Y}
	case X2Y2:
		return contract.Derivative{DX: 2 * p.Y, DY: 2 * p.X}
	}
	// 仅 Parse 产生 Shape；其他值属于编程错误。
	panic(fmt.Sprintf("field: derivative of %v", s))
}

// Resolve 将整条表头解析为有序导数向量列表（每列一个）。
// 首个未知名称即失败，错误中带 1 起的列号。
func Resolve(header []string, p contract.Point, fold bool) ([]contract.Derivative, error) {
	out := make([]contract.Derivative, 0, len(header))
	for i, name := range header {
		s, err := Parse(name, fold)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		out = append(out, s.Derivative(p))
	}
	return out, nil
}
