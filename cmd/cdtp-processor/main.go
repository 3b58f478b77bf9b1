package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/consumer"
	"github.com/Ekremunalytu/CDTPBackend/internal/service"
	"github.com/Ekremunalytu/CDTPBackend/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "cdtp-processor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting cdtp-processor service")

	// 创建服务
	svc, err := service.NewProcessorService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create processor service", zap.Error(err))
	}

	// 队列消费者（并发worker池）
	processor := consumer.NewPipelineProcessor(svc.DB(), cfg, svc.Pipeline(), log)
	svc.AddRunner(consumer.NewQueueConsumer(cfg, processor, log))

	// 周期性不活动扫描器
	svc.AddRunner(consumer.NewInactivitySweeper(svc.DB(), cfg, svc.Pipeline(), log))

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动服务（在 goroutine 中）
	errChan := make(chan error, 1)
	go func() {
		if err := svc.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// 等待信号或错误
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		log.Error("Service error", zap.Error(err))
		cancel()
	}

	// 停止服务
	svc.Stop()

	log.Info("Service stopped")
}
