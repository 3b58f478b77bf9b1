package consumer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/evaluator"
	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
	"github.com/Ekremunalytu/CDTPBackend/internal/service"
)

// InactivitySweeper 周期性不活动扫描器
//
// 独立于批次到达运行：设备停止上报（丢失、没电）时队列消费
// 无法发现持续不动的患者，扫描器按固定间隔检查所有已知患者的
// 最后移动时间，超限时走与队列消费相同的评估→落库→通知路径。
// 去重窗口内已有同类报警时抑制，避免报警风暴
type InactivitySweeper struct {
	db       *sql.DB
	config   *config.Config
	pipeline *service.MeasurementPipeline
	logger   *zap.Logger
}

// NewInactivitySweeper 创建不活动扫描器
func NewInactivitySweeper(
	db *sql.DB,
	cfg *config.Config,
	pipeline *service.MeasurementPipeline,
	logger *zap.Logger,
) *InactivitySweeper {
	return &InactivitySweeper{
		db:       db,
		config:   cfg,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Start 启动扫描循环，阻塞到ctx取消
func (s *InactivitySweeper) Start(ctx context.Context) error {
	s.logger.Info("Inactivity sweeper started",
		zap.Duration("interval", s.config.Sweeper.Interval),
		zap.Duration("debounce_window", s.config.Sweeper.DebounceWindow),
	)

	ticker := time.NewTicker(s.config.Sweeper.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Inactivity sweeper stopped")
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				// 下个周期重试，不中断
				s.logger.Error("Inactivity sweep failed",
					zap.Error(err),
				)
			}
		}
	}
}

// Sweep 执行一轮扫描
func (s *InactivitySweeper) Sweep(ctx context.Context) error {
	metrics.SweepsTotal.Inc()

	movementRepo := repository.NewMovementRepository(s.db, s.logger)
	patients, err := movementRepo.ListTrackedPatients(ctx, s.config.Defaults.MaxInactivitySeconds)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, p := range patients {
		inactivitySeconds := int(now.Sub(p.LastMovementAt).Seconds())
		if inactivitySeconds <= p.MaxInactivitySeconds {
			continue
		}

		if err := s.raiseInactivityAlert(ctx, p.PatientID, inactivitySeconds); err != nil {
			// 单个患者失败不影响其余患者
			s.logger.Error("Failed to raise inactivity alert",
				zap.String("patient_id", p.PatientID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// raiseInactivityAlert 为单个超限患者产生报警（带去重抑制）
func (s *InactivitySweeper) raiseInactivityAlert(ctx context.Context, patientID string, inactivitySeconds int) error {
	// 去重：窗口内已有同类报警则抑制
	alertRepo := repository.NewAlertRepository(s.db, s.logger)
	recent, err := alertRepo.CountRecentByMarker(ctx, patientID, evaluator.InactivityAlertMarker, s.config.Sweeper.DebounceWindow)
	if err != nil {
		return err
	}
	if recent > 0 {
		metrics.SweepAlertsSuppressed.Inc()
		s.logger.Debug("Inactivity alert suppressed by debounce window",
			zap.String("patient_id", patientID),
			zap.Int("inactivity_seconds", inactivitySeconds),
		)
		return nil
	}

	s.logger.Warn("Prolonged inactivity detected",
		zap.String("patient_id", patientID),
		zap.Int("inactivity_seconds", inactivitySeconds),
	)

	// 没有新读数：用占位心率走共享管道
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, alert, err := s.pipeline.Process(ctx, tx, patientID, s.config.Sweeper.PlaceholderBPM, inactivitySeconds, false)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if alert != nil {
		metrics.AlertsCreated.WithLabelValues("sweeper").Inc()
	}

	return nil
}
