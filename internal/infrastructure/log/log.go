// Package log 提供基于 zap 的诊断日志
//
// 标准输出（stdout）专用于结果 JSON，所有日志只写入诊断流（stderr）或轮转日志文件。
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New 根据配置创建日志记录器
// console: 诊断流，nil 时使用 os.Stderr
func New(opts *Options, console io.Writer) (*zap.Logger, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if console == nil {
		console = os.Stderr
	}

	level := zap.NewAtomicLevelAt(opts.ZapLevel())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(opts.Color && isTerminal(console)), zapcore.AddSync(console), level),
	}

	if opts.FilePath != "" {
		writer, err := fileWriter(opts)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(fileEncoder(), writer, level))
	}

	zapOptions := []zap.Option{zap.ErrorOutput(zapcore.AddSync(console))}
	if opts.EnableCaller {
		zapOptions = append(zapOptions, zap.AddCaller())
	}

	return zap.New(zapcore.NewTee(cores...), zapOptions...), nil
}

// Nop 返回不输出任何内容的日志记录器
func Nop() *zap.Logger {
	return zap.NewNop()
}

// isTerminal 诊断流是否连接到终端
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// fileWriter 创建带轮转的日志文件写入器
func fileWriter(opts *Options) (zapcore.WriteSyncer, error) {
	path, err := filepath.Abs(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("resolve log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}), nil
}
