package consumer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/analyzer"
	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
	"github.com/Ekremunalytu/CDTPBackend/internal/service"
)

// BatchProcessor 单次批次处理接口
// worker池通过它驱动处理；测试中可替换为内存实现验证并发语义
type BatchProcessor interface {
	// ProcessNext 认领并处理下一个批次
	// 返回 (true, nil) 表示处理了一个批次；(false, nil) 表示队列为空
	ProcessNext(ctx context.Context) (bool, error)
}

// PipelineProcessor 批次处理器（BatchProcessor 的存储实现）
//
// 每次调用在单个事务内完成：
// 认领（FOR UPDATE SKIP LOCKED）→ 信号分析 → 移动状态读写 →
// 阈值评估 → 测量/报警落库 → 通知发布 → 标记消费 → 提交。
// 提交前任何失败都回滚，批次保持未消费、可被任意worker重试
type PipelineProcessor struct {
	db        *sql.DB
	config    *config.Config
	pipeline  *service.MeasurementPipeline
	batchRepo *repository.BatchRepository
	logger    *zap.Logger
}

// NewPipelineProcessor 创建批次处理器
func NewPipelineProcessor(
	db *sql.DB,
	cfg *config.Config,
	pipeline *service.MeasurementPipeline,
	logger *zap.Logger,
) *PipelineProcessor {
	return &PipelineProcessor{
		db:        db,
		config:    cfg,
		pipeline:  pipeline,
		batchRepo: repository.NewBatchRepository(db, logger),
		logger:    logger,
	}
}

// ProcessNext 认领并处理下一个未消费批次
func (p *PipelineProcessor) ProcessNext(ctx context.Context) (bool, error) {
	start := time.Now()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// 提交前出错一律回滚：行锁释放，批次保持可重试
	defer tx.Rollback()

	// 1. 认领最旧的未消费批次（锁被占用的行直接跳过）
	batch, err := p.batchRepo.ClaimOldest(ctx, tx)
	if err != nil {
		return false, err
	}
	if batch == nil {
		return false, nil
	}

	// 2. 信号分析
	fallParams := analyzer.FallParams{
		ImpactThreshold:       p.config.Algorithm.ImpactThreshold,
		FreefallThreshold:     p.config.Algorithm.FreefallThreshold,
		StillnessThreshold:    p.config.Algorithm.FallStillness,
		StillnessSamples:      p.config.Algorithm.StillnessSamples,
		SevereImpactThreshold: p.config.Algorithm.SevereImpactThreshold,
	}
	isFall, fallType := analyzer.ClassifyFall(batch.Accelerometer, fallParams)
	if isFall {
		p.logger.Warn("Fall detected",
			zap.String("patient_id", batch.PatientID),
			zap.String("fall_type", string(fallType)),
		)
		metrics.FallsDetected.WithLabelValues(string(fallType)).Inc()
	}

	bpm := analyzer.EstimateBPM(batch.PPGRaw, p.config.Algorithm.PPGSamplingRateHz)

	// 3. 读取移动状态，计算跨批次的不活动时长
	movementRepo := repository.NewMovementRepository(tx, p.logger)
	lastMovementAt, err := movementRepo.GetLastMovement(ctx, batch.PatientID)
	if err != nil {
		return false, err
	}

	var lastMovementTS *float64
	if lastMovementAt != nil {
		ts := float64(lastMovementAt.UnixNano()) / 1e9
		lastMovementTS = &ts
	}

	inactivitySeconds, isMoving := analyzer.EstimateInactivity(
		batch.Accelerometer,
		batch.Timestamp,
		lastMovementTS,
		analyzer.InactivityParams{StillnessThreshold: p.config.Algorithm.InactivityStillness},
	)

	// 4. 有移动时更新移动状态（同一事务内，与批次消费一起提交）
	if isMoving {
		movedAt := epochToTime(batch.Timestamp)
		if err := movementRepo.UpsertLastMovement(ctx, batch.PatientID, movedAt); err != nil {
			return false, err
		}
	}

	// 5. 评估→落库→通知
	measurement, alert, err := p.pipeline.Process(ctx, tx, batch.PatientID, bpm, inactivitySeconds, isFall)
	if err != nil {
		return false, err
	}

	// 6. 标记批次已消费并提交
	if err := p.batchRepo.MarkProcessed(ctx, tx, batch.ID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.BatchesProcessed.WithLabelValues(measurement.Status).Inc()
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	if alert != nil {
		metrics.AlertsCreated.WithLabelValues("queue").Inc()
	}

	p.logger.Info("Batch processed",
		zap.Int64("batch_id", batch.ID),
		zap.String("patient_id", batch.PatientID),
		zap.Int("bpm", bpm),
		zap.Int("inactivity_seconds", inactivitySeconds),
		zap.String("status", measurement.Status),
	)

	return true, nil
}

// epochToTime Unix秒（含小数）转time.Time
func epochToTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
