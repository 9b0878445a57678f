package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"localk/internal/config"
	"localk/internal/diag"
	"localk/internal/pipeline"
	"localk/internal/stream"
	"localk/pkg/registry"
	"localk/plugins/writer/filesystem"
)

var pipelineRun = pipeline.Run

// localk X Y < samples.csv > kspace.csv
// 位置参数为求值点坐标；表头为场名，其后每行一条样本。
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	start := time.Now()
	cfg, err := config.Parse(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return diag.ExitOK
		}
		fprintf(stderr, "参数错误: %v\n%s\n", err, config.Usage)
		return diag.ExitCode(err)
	}

	var sink diag.LineSink
	if cfg.Logging.Dir != "" {
		rf := diag.NewRotatingFile(cfg.Logging.Dir, cfg.Logging.MaxBytes, cfg.Logging.Keep)
		defer rf.Close()
		sink = rf
	}
	logger := diag.NewLogger(uuid.NewString(), cfg.Logging.Level, sink)
	logger.DebugStart("config", "effective", map[string]string{
		"x":         strconv.FormatFloat(cfg.Point.X, 'g', -1, 64),
		"y":         strconv.FormatFloat(cfg.Point.Y, 'g', -1, 64),
		"framing":   cfg.Framing,
		"fold_case": strconv.FormatBool(cfg.FoldCase),
		"input":     cfg.Input,
		"output":    cfg.Output,
		"atomic":    strconv.FormatBool(cfg.Atomic),
	})

	src := stdin
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return failRun(logger, stderr, err, start)
		}
		defer f.Close()
		src = f
	}
	in, err := stream.Open(src, 0)
	if err != nil {
		return failRun(logger, stderr, err, start)
	}
	defer in.Close()
	if in.Compression != stream.None {
		logger.DebugStart("stream", "decompress", map[string]string{"format": in.Compression.String()})
	}

	dst := stdout
	var out *filesystem.File
	if cfg.Output != "-" {
		atomic := cfg.Atomic
		out, err = filesystem.Create(cfg.Output, &filesystem.Options{Atomic: &atomic})
		if err != nil {
			return failRun(logger, stderr, err, start)
		}
		// Commit 成功后 Abort 为 no-op；失败路径上放弃临时文件
		defer out.Abort()
		dst = out
	}

	comp := pipeline.Components{
		Reader: registry.Reader[cfg.Framing](in),
		Writer: registry.Writer[cfg.Framing](dst),
	}
	set := pipeline.Settings{Point: cfg.Point, FoldCase: cfg.FoldCase}

	t := logger.Start("pipeline", "run")
	st, err := pipelineRun(context.Background(), comp, set, logger)
	if err != nil {
		if out != nil && !cfg.Atomic {
			logger.Warn("output", "partial output retained", map[string]string{"path": cfg.Output})
		}
		return failRun(logger, stderr, err, start)
	}
	if out != nil {
		if err := out.Commit(); err != nil {
			return failRun(logger, stderr, err, start)
		}
	}
	t.Finish("run", st.Rows)
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	logger.DebugStart("pipeline", "metrics", diag.SnapshotKV())
	return diag.ExitOK
}

// failRun 记录首错、输出人类可读诊断并返回退出码。
func failRun(logger *diag.Logger, stderr io.Writer, err error, start time.Time) int {
	code := string(diag.Classify(err))
	logger.Error("pipeline", code, err.Error(), &start)
	diag.IncOp("pipeline", "error", "error")
	if code != string(diag.CodeUnknown) {
		diag.IncError("pipeline", code)
	}
	fprintf(stderr, "计算局部 k 空间失败: %v\n", err)
	return diag.ExitCode(err)
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }
