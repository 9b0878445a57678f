package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"localk/internal/diag"
	"localk/internal/field"
	"localk/internal/project"
	"localk/pkg/contract"
)

// - 单线程、同步：表头一次解析为导数向量列表，其后逐行投影、逐行写出。
// - 顺序：输出第 i 行对应输入第 i 条数据记录；无重排。
// - 首错即止：任一行失败时不写出该行，冲刷已写出的行后返回。
// - 内存 O(列数)，与行数无关。

// Components 聚合运行所需的帧读写组件。
type Components struct {
	Reader contract.Reader
	Writer contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Point contract.Point
	// FoldCase: 表头名大小写不敏感匹配。
	FoldCase bool
}

// Stats 为一次运行的汇总。
type Stats struct {
	Columns int
	Rows    int64
}

// Run 执行：Header → Resolve → 写 k1,k2 → (Next → Project → Write)* → Flush。
// 表头解析失败（含未知场名）时不写出任何内容。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Stats, error) {
	var st Stats
	if comp.Reader == nil || comp.Writer == nil {
		return st, errors.New("sanity: reader/writer required")
	}

	header, err := comp.Reader.Header()
	if err != nil {
		fail(logger, "reader", err)
		return st, fmt.Errorf("read header: %w", err)
	}
	derivs, err := field.Resolve(header, set.Point, set.FoldCase)
	if err != nil {
		fail(logger, "resolver", err)
		return st, fmt.Errorf("resolve header: %w", err)
	}
	diag.IncOp("resolver", "finish", "success")
	logger.DebugStart("resolver", "derivatives", derivativeKV(header, derivs))

	proj := project.New(derivs)
	st.Columns = proj.Columns()
	if err := comp.Writer.WriteHeader(contract.OutputHeader); err != nil {
		fail(logger, "writer", err)
		return st, fmt.Errorf("write header: %w", err)
	}

	t := logger.StartWithKV("projector", "rows", map[string]string{
		"columns":   strconv.Itoa(st.Columns),
		"fold_case": strconv.FormatBool(set.FoldCase),
	})
	for {
		if err := ctx.Err(); err != nil {
			return st, abort(logger, comp.Writer, "pipeline", 0, err)
		}
		s, err := comp.Reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, abort(logger, comp.Writer, "reader", st.Rows+1, fmt.Errorf("read: %w", err))
		}
		out, err := proj.Project(s)
		if err != nil {
			return st, abort(logger, comp.Writer, "projector", st.Rows+1, fmt.Errorf("%w: row %d: %w", contract.ErrMalformedRecord, st.Rows+1, err))
		}
		if err := comp.Writer.Write(out); err != nil {
			return st, abort(logger, comp.Writer, "writer", st.Rows+1, fmt.Errorf("write row %d: %w", st.Rows+1, err))
		}
		st.Rows++
	}
	if err := comp.Writer.Flush(); err != nil {
		fail(logger, "writer", err)
		return st, fmt.Errorf("flush: %w", err)
	}
	t.Finish("rows", st.Rows)
	diag.AddCount("projector", "rows", st.Rows)
	diag.IncOp("projector", "finish", "success")
	diag.ObserveDuration("projector", "finish", t.Since().Milliseconds())
	return st, nil
}

// abort 冲刷已写出的完整行后返回 err（冲刷错误被忽略，保留首错）。
// row 为出错的数据行号（自 1 起）；0 表示与具体行无关。
func abort(logger *diag.Logger, w contract.Writer, comp string, row int64, err error) error {
	_ = w.Flush()
	failRow(logger, comp, row, err)
	return err
}

func fail(logger *diag.Logger, comp string, err error) { failRow(logger, comp, 0, err) }

func failRow(logger *diag.Logger, comp string, row int64, err error) {
	code := diag.Classify(err)
	if row > 0 {
		logger.ErrorRow(comp, string(code), err.Error(), row)
	} else {
		logger.Error(comp, string(code), err.Error(), nil)
	}
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func derivativeKV(header []string, d []contract.Derivative) map[string]string {
	kv := make(map[string]string, len(d))
	for i := range d {
		var b strings.Builder
		b.WriteString(contract.FormatValue(d[i].DX))
		b.WriteByte(',')
		b.WriteString(contract.FormatValue(d[i].DY))
		kv[strconv.Itoa(i+1)+":"+header[i]] = b.String()
	}
	return kv
}
