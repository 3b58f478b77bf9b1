package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/notifier"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
	"github.com/Ekremunalytu/CDTPBackend/pkg/database"
	pkgredis "github.com/Ekremunalytu/CDTPBackend/pkg/redis"
)

// queueDepthInterval 队列深度指标采样间隔
const queueDepthInterval = 15 * time.Second

// Runner 处理端可启动组件（队列消费者、扫描器）
type Runner interface {
	Start(ctx context.Context) error
}

// ProcessorService 处理服务：队列消费 + 不活动扫描 + 指标
// 组装连接池、通知fan-out和共享测量管道，持有各可启动组件
type ProcessorService struct {
	config    *config.Config
	db        *sql.DB
	redis     *redis.Client
	pipeline  *MeasurementPipeline
	runners   []Runner
	metricsHS *http.Server
	logger    *zap.Logger
}

// NewProcessorService 组装处理服务的全部依赖
func NewProcessorService(cfg *config.Config, logger *zap.Logger) (*ProcessorService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := pkgredis.NewRedisClient(&cfg.Redis)
	if err := pkgredis.Ping(context.Background(), redisClient); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// 通知fan-out：Redis中继（实时推送服务消费） + 可选报警webhook
	publishers := []notifier.Publisher{
		notifier.NewRedisRelay(redisClient, cfg.Realtime.ChannelPrefix, logger),
	}
	if cfg.Notify.WebhookURL != "" {
		publishers = append(publishers,
			notifier.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout, logger))
	}
	fanout := notifier.NewFanout(logger, publishers...)

	return &ProcessorService{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		pipeline: NewMeasurementPipeline(cfg, fanout, logger),
		logger:   logger,
		metricsHS: &http.Server{
			Addr:    cfg.Processor.MetricsAddr,
			Handler: promhttp.Handler(),
		},
	}, nil
}

// Pipeline 返回共享测量管道（消费者和扫描器构造时使用）
func (s *ProcessorService) Pipeline() *MeasurementPipeline {
	return s.pipeline
}

// DB 返回共享连接池
func (s *ProcessorService) DB() *sql.DB {
	return s.db
}

// AddRunner 注册可启动组件
func (s *ProcessorService) AddRunner(r Runner) {
	s.runners = append(s.runners, r)
}

// Start 启动全部组件，阻塞到ctx取消
func (s *ProcessorService) Start(ctx context.Context) error {
	// 指标HTTP端点
	go func() {
		s.logger.Info("Metrics server listening",
			zap.String("addr", s.config.Processor.MetricsAddr),
		)
		if err := s.metricsHS.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server failed",
				zap.Error(err),
			)
		}
	}()

	// 队列深度采样
	go s.sampleQueueDepth(ctx)

	// 各组件并行运行，全部随ctx退出
	errCh := make(chan error, len(s.runners))
	for _, r := range s.runners {
		runner := r
		go func() {
			errCh <- runner.Start(ctx)
		}()
	}

	for range s.runners {
		if err := <-errCh; err != nil {
			return err
		}
	}
	return nil
}

// Stop 释放资源
func (s *ProcessorService) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.metricsHS.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Metrics server shutdown failed",
			zap.Error(err),
		)
	}
	if err := pkgredis.Close(s.redis); err != nil {
		s.logger.Warn("Failed to close Redis client",
			zap.Error(err),
		)
	}
	if err := database.Close(s.db); err != nil {
		s.logger.Warn("Failed to close database",
			zap.Error(err),
		)
	}
	s.logger.Info("Processor service stopped")
}

func (s *ProcessorService) sampleQueueDepth(ctx context.Context) {
	batchRepo := repository.NewBatchRepository(s.db, s.logger)
	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := batchRepo.CountPending(ctx)
			if err != nil {
				s.logger.Warn("Failed to sample queue depth",
					zap.Error(err),
				)
				continue
			}
			metrics.QueueDepth.Set(float64(count))
		}
	}
}
