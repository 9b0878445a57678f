package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"localk/internal/diag"
	"localk/pkg/contract"
	"localk/pkg/registry"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// 不读取配置文件与环境变量；全部来自命令行。
type Config struct {
	// Point 为求值点，来自前两个位置参数。
	Point contract.Point `json:"point"`
	// Framing 为输入/输出帧格式名（registry 中注册）。
	Framing string `json:"framing"`
	// FoldCase: 表头匹配是否大小写不敏感；默认敏感。
	FoldCase bool `json:"fold_case"`
	// Input: 输入文件路径；"-" 或空表示 STDIN。
	Input string `json:"input"`
	// Output: 输出文件路径；"-" 表示 STDOUT。
	Output string `json:"output"`
	// Atomic: Output 为文件时是否原子替换（失败时目标保持原状）。
	Atomic  bool    `json:"atomic"`
	Logging Logging `json:"logging"`
}

// Logging: 等级与可选的落盘目录（空则丢弃事件）。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
	// MaxBytes: 单个日志文件的轮转阈值。
	MaxBytes int64 `json:"max_bytes"`
	// Keep: 保留的历史文件数；0 表示不清理。
	Keep int `json:"keep"`
}

// Defaults 返回带有安全默认值的 Config 雏形（Point 为零值，须由参数提供）。
func Defaults() Config {
	return Config{
		Framing: "csv",
		Input:   "-",
		Output:  "-",
		Atomic:  true,
		Logging: Logging{Level: "info", MaxBytes: 10 * 1024 * 1024, Keep: 5},
	}
}

// Usage 为命令行用法首行。
const Usage = "usage: localk [flags] X Y"

// Parse 解析命令行参数（不含程序名）。
// 前两个位置参数为求值点坐标，多余位置参数忽略。
// 任何参数错误均包装 contract.ErrInvalidArgument。
// 形如 "-1.5" 的负数视为位置参数的开始（见 splitNegative）。
func Parse(args []string, stderr io.Writer) (Config, error) {
	cfg := Defaults()
	fs := flag.NewFlagSet("localk", flag.ContinueOnError)
	if stderr == nil {
		stderr = io.Discard
	}
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, Usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Framing, "framing", cfg.Framing, "输入/输出帧格式："+strings.Join(registry.Framings(), "|"))
	fs.BoolVar(&cfg.FoldCase, "fold-case", cfg.FoldCase, "表头场名大小写不敏感匹配（默认敏感）")
	fs.StringVar(&cfg.Input, "input", cfg.Input, "输入文件路径；\"-\" 表示 STDIN")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "输出文件路径；\"-\" 表示 STDOUT")
	fs.BoolVar(&cfg.Atomic, "atomic", cfg.Atomic, "输出文件经临时文件原子替换；失败时不改动目标")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "日志级别 debug|info|warn|error")
	fs.StringVar(&cfg.Logging.Dir, "log-dir", cfg.Logging.Dir, "结构化日志目录（按大小轮转）；空则不记录")
	if err := fs.Parse(splitNegative(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %v", contract.ErrInvalidArgument, err)
	}
	pos := fs.Args()
	if len(pos) < 2 {
		return cfg, fmt.Errorf("%w: expected 2 coordinates, got %d", contract.ErrInvalidArgument, len(pos))
	}
	x, err := parseCoord("x", pos[0])
	if err != nil {
		return cfg, err
	}
	y, err := parseCoord("y", pos[1])
	if err != nil {
		return cfg, err
	}
	cfg.Point = contract.Point{X: x, Y: y}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// splitNegative 在首个可解析为数值的 "-…" 参数前插入 "--"，
// 使 flag 包将其视为位置参数而非未知旗标。
func splitNegative(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args
		}
		if len(a) > 1 && a[0] == '-' {
			if _, err := strconv.ParseFloat(a, 64); err == nil {
				out := make([]string, 0, len(args)+1)
				out = append(out, args[:i]...)
				out = append(out, "--")
				return append(out, args[i:]...)
			}
		}
	}
	return args
}

func parseCoord(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", contract.ErrInvalidArgument, name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not finite", contract.ErrInvalidArgument, name, s)
	}
	return v, nil
}

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if registry.Reader[cfg.Framing] == nil || registry.Writer[cfg.Framing] == nil {
		return fmt.Errorf("%w: framing %q not registered", contract.ErrInvalidArgument, cfg.Framing)
	}
	if _, ok := diag.ParseLevel(cfg.Logging.Level); !ok {
		return fmt.Errorf("%w: log level %q", contract.ErrInvalidArgument, cfg.Logging.Level)
	}
	if strings.TrimSpace(cfg.Input) == "" {
		return fmt.Errorf("%w: input path cannot be empty", contract.ErrInvalidArgument)
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("%w: output path cannot be empty", contract.ErrInvalidArgument)
	}
	if cfg.Logging.Keep < 0 {
		return fmt.Errorf("%w: logging.keep must be >= 0", contract.ErrInvalidArgument)
	}
	return nil
}
