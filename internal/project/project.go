// Package project 将单条样本按列导数向量投影为局部 k 空间贡献。
package project

import (
	"fmt"

	"localk/pkg/contract"
)

// Project 计算 k1 = Σ d[i].DX·s[i]，k2 = Σ d[i].DY·s[i]。
// 累加自 0 起、按列自左向右，结果可复现。长度不一致返回 ErrDimensionMismatch。
func Project(d []contract.Derivative, s contract.Sample) (contract.Output, error) {
	if len(d) != len(s) {
		return contract.Output{}, fmt.Errorf("%w: %d columns, %d values", contract.ErrDimensionMismatch, len(d), len(s))
	}
	var out contract.Output
	for i, v := range s {
		out.K1 += d[i].DX * v
		out.K2 += d[i].DY * v
	}
	return out, nil
}

// Projector 持有单次运行的导数向量列表（构造时拷贝，之后只读）。
type Projector struct {
	d []contract.Derivative
}

// New 以 d 的副本构造 Projector。
func New(d []contract.Derivative) *Projector {
	cp := make([]contract.Derivative, len(d))
	copy(cp, d)
	return &Projector{d: cp}
}

// Columns 返回期望的列数。
func (p *Projector) Columns() int { return len(p.d) }

// Project 对单条样本求值。
func (p *Projector) Project(s contract.Sample) (contract.Output, error) {
	return Project(p.d, s)
}
