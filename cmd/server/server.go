package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/handlers"
	"github.com/lbestle/go-shareable/internal/pkg/logger"
	"github.com/lbestle/go-shareable/internal/repositories"
	"github.com/lbestle/go-shareable/internal/router"
	"github.com/lbestle/go-shareable/internal/services"
	"go.uber.org/zap"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer 负责构建所有依赖
func NewServer(cfg *config.Config) (*Server, error) {
	// 三个数据目录必须已经存在
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	users, err := cfg.BuildUsers()
	if err != nil {
		return nil, fmt.Errorf("解析用户配置失败: %w", err)
	}

	// 初始化 Repositories
	itemRepo := repositories.NewItemRepository(cfg.Paths.Items, cfg.Paths.Files)

	// 初始化 Services
	itemService := services.NewItemService(itemRepo, cfg)
	inboxService := services.NewInboxService(itemService, cfg)

	// 初始化 Handlers
	authHandler := handlers.NewAuthHandler(users, cfg)
	itemHandler := handlers.NewItemHandler(itemService, cfg)
	inboxHandler := handlers.NewInboxHandler(inboxService)

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(authHandler, itemHandler, inboxHandler, users, cfg)

	addr := ":" + cfg.Server.Port
	logger.Info("服务器监听中", zap.String("addr", addr))
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return &Server{
		router:     engine,
		httpServer: httpServer,
	}, nil
}

// Run 启动服务器并处理优雅关机
func (s *Server) Run(ctx context.Context, stopChan chan os.Signal) {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待停止信号
	<-stopChan
	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("服务器被强制关闭", zap.Error(err))
	}
	logger.Info("服务器已退出")
}
