package log

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	defaultLogLevel   = "info"
	defaultMaxSize    = 20 // MB
	defaultMaxBackups = 5
	defaultMaxAge     = 14 // days
	defaultCompress   = true
)

var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Options 日志配置选项
//
// 控制台输出始终写入诊断流（stderr），FilePath 非空时额外写入轮转文件。
type Options struct {
	Level    string `json:"level"`     // debug|info|warn|error
	FilePath string `json:"file_path"` // 日志文件路径，空表示不写文件

	// 轮转配置
	MaxSize    int  `json:"max_size"`
	MaxBackups int  `json:"max_backups"`
	MaxAge     int  `json:"max_age"`
	Compress   bool `json:"compress"`

	EnableCaller bool `json:"enable_caller"`

	// Color 控制台为终端时按级别着色
	Color bool `json:"color"`
}

// DefaultOptions 返回默认配置
func DefaultOptions() *Options {
	return &Options{
		Level:      defaultLogLevel,
		MaxSize:    defaultMaxSize,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAge,
		Compress:   defaultCompress,
		Color:      true,
	}
}

// ZapLevel 解析日志级别，未知级别回退到 info
func (o *Options) ZapLevel() zapcore.Level {
	if level, ok := defaultLevelMap[strings.ToLower(strings.TrimSpace(o.Level))]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// ValidLevel 判断日志级别名称是否合法
func ValidLevel(level string) bool {
	_, ok := defaultLevelMap[strings.ToLower(strings.TrimSpace(level))]
	return ok
}

func consoleEncoder(color bool) zapcore.Encoder {
	levelEncoder := zapcore.CapitalLevelEncoder
	if color {
		levelEncoder = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    levelEncoder,
	})
}

func fileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	})
}
