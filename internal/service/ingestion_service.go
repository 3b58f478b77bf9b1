package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/ingest"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
	"github.com/Ekremunalytu/CDTPBackend/pkg/database"
	"github.com/Ekremunalytu/CDTPBackend/pkg/mqtt"
)

// IngestionService 摄入服务：HTTP（可选MQTT）接收批次并入队
type IngestionService struct {
	config   *config.Config
	db       *sql.DB
	server   *http.Server
	mqttConn *mqtt.Client
	mqttCons *ingest.MQTTConsumer
	logger   *zap.Logger
}

// NewIngestionService 组装摄入服务
func NewIngestionService(cfg *config.Config, logger *zap.Logger) (*IngestionService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	batchRepo := repository.NewBatchRepository(db, logger)
	handler := ingest.NewHandler(batchRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	svc := &IngestionService{
		config: cfg,
		db:     db,
		server: &http.Server{
			Addr:         cfg.Ingestion.HTTPAddr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}

	if cfg.Ingestion.MQTTEnabled {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		svc.mqttConn = mqttClient
		svc.mqttCons = ingest.NewMQTTConsumer(
			mqttClient, batchRepo, cfg.Ingestion.MQTTTopic, cfg.MQTT.QoS, logger)
	}

	return svc, nil
}

// Start 启动服务，阻塞到ctx取消
func (s *IngestionService) Start(ctx context.Context) error {
	if s.mqttCons != nil {
		if err := s.mqttCons.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Ingestion HTTP server listening",
			zap.String("addr", s.config.Ingestion.HTTPAddr),
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
func (s *IngestionService) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown failed",
			zap.Error(err),
		)
	}

	if s.mqttCons != nil {
		s.mqttCons.Stop()
	}
	if s.mqttConn != nil {
		s.mqttConn.Disconnect()
	}

	if err := database.Close(s.db); err != nil {
		s.logger.Warn("Failed to close database",
			zap.Error(err),
		)
	}
	s.logger.Info("Ingestion service stopped")
}
