package diag

import (
	"strconv"
	"sync"
)

// 进程内最小计数器：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计）
var (
	metricsMu sync.Mutex
	counters  = map[string]int64{}
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) { add("op_total{"+comp+","+stage+","+result+"}", 1) }

// IncError 按分类累加错误计数。
func IncError(comp, code string) { add("error_total{"+comp+","+code+"}", 1) }

// AddCount 累加任意计数（例如处理行数）。
func AddCount(comp, name string, n int64) { add(name+"{"+comp+"}", n) }

// ObserveDuration 累计阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	add("op_duration_ms{"+comp+","+stage+"}", durMS)
}

func add(key string, n int64) {
	metricsMu.Lock()
	counters[key] += n
	metricsMu.Unlock()
}

// Snapshot 返回当前计数的拷贝。
func Snapshot() map[string]int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// SnapshotKV 将计数渲染为日志 KV。
func SnapshotKV() map[string]string {
	snap := Snapshot()
	kv := make(map[string]string, len(snap))
	for k, v := range snap {
		kv[k] = strconv.FormatInt(v, 10)
	}
	return kv
}

// ResetMetrics 清空计数（测试与多次运行使用）。
func ResetMetrics() {
	metricsMu.Lock()
	counters = map[string]int64{}
	metricsMu.Unlock()
}
