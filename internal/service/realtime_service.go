package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/notifier"
	"github.com/Ekremunalytu/CDTPBackend/internal/realtime"
	pkgredis "github.com/Ekremunalytu/CDTPBackend/pkg/redis"
)

// RealtimeService 实时推送服务
// 从Redis中继接收处理端发布的事件，经进程内Hub分发给WebSocket客户端
type RealtimeService struct {
	config     *config.Config
	redis      *redis.Client
	hub        *notifier.Hub
	subscriber *notifier.RedisSubscriber
	server     *http.Server
	logger     *zap.Logger
}

// NewRealtimeService 组装实时推送服务
func NewRealtimeService(cfg *config.Config, logger *zap.Logger) (*RealtimeService, error) {
	redisClient := pkgredis.NewRedisClient(&cfg.Redis)
	if err := pkgredis.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	hub := notifier.NewHub(cfg.Realtime.SendBufferSize, logger)
	server := realtime.NewServer(hub, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	server.RegisterRoutes(router)

	return &RealtimeService{
		config:     cfg,
		redis:      redisClient,
		hub:        hub,
		subscriber: notifier.NewRedisSubscriber(redisClient, cfg.Realtime.ChannelPrefix, logger),
		server: &http.Server{
			Addr:    cfg.Realtime.HTTPAddr,
			Handler: router,
		},
		logger: logger,
	}, nil
}

// Start 启动服务，阻塞到ctx取消
func (s *RealtimeService) Start(ctx context.Context) error {
	// 中继事件转入进程内Hub
	events := s.subscriber.Subscribe(ctx)
	go func() {
		for event := range events {
			if err := s.hub.Publish(ctx, event); err != nil {
				s.logger.Error("Failed to dispatch relay event",
					zap.String("event_id", event.EventID),
					zap.Error(err),
				)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Realtime WebSocket server listening",
			zap.String("addr", s.config.Realtime.HTTPAddr),
		)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop 释放资源
func (s *RealtimeService) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("WebSocket server shutdown failed",
			zap.Error(err),
		)
	}
	if err := pkgredis.Close(s.redis); err != nil {
		s.logger.Warn("Failed to close Redis client",
			zap.Error(err),
		)
	}
	s.logger.Info("Realtime service stopped")
}
