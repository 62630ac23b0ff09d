package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lbestle/go-shareable/cmd/server"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("加载配置出错", zap.Error(err))
	}

	// 初始化日志系统
	if cfg.Log.OutputPath != "" {
		logger.InitLogger(cfg.Log.Level, cfg.Log.OutputPath)
	} else {
		logger.InitLogger(cfg.Log.Level)
	}
	defer logger.Sync() // 确保在应用退出时刷新所有缓冲的日志条目

	logger.Info("启动文件分享服务...")

	// 创建并构建应用服务器实例
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("无法启动应用程序", zap.Error(err))
	}

	// 创建一个通道用于接收停止信号
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器
	srv.Run(context.Background(), stopChan)

	logger.Info("文件分享服务已退出。")
}
