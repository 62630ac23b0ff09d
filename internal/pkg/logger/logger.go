package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
)

// InitLogger 初始化全局 Zap 日志器
// level: 日志级别 (debug, info, warn, error)
// outputPaths: 额外的日志文件路径，为空时仅输出到 stdout
func InitLogger(level string, outputPaths ...string) {
	once.Do(func() {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			l = zap.InfoLevel
			fmt.Fprintf(os.Stderr, "无法解析日志级别 %q, 回退到 info: %v\n", level, err)
		}

		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(l)
		cfg.OutputPaths = append([]string{"stdout"}, outputPaths...)
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		var err error
		log, err = cfg.Build()
		if err != nil {
			panic(fmt.Sprintf("构建 zap 日志器失败: %v", err))
		}
		zap.ReplaceGlobals(log)
	})
}

// GetLogger 返回全局日志器，未初始化时使用默认配置
func GetLogger() *zap.Logger {
	if log == nil {
		InitLogger("info")
	}
	return log
}

// Sync 刷新日志缓冲区，程序退出前调用
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}
