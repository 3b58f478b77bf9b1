package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/evaluator"
	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/models"
	"github.com/Ekremunalytu/CDTPBackend/internal/notifier"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
)

// MeasurementPipeline 共享测量处理管道
// 队列消费者和不活动扫描器走同一条路径：
// 读取阈值 → 评估 → 落库测量 → 发布通知 → 需要时落库并发布报警
type MeasurementPipeline struct {
	config    *config.Config
	publisher notifier.Publisher
	logger    *zap.Logger
}

// NewMeasurementPipeline 创建测量管道
func NewMeasurementPipeline(cfg *config.Config, publisher notifier.Publisher, logger *zap.Logger) *MeasurementPipeline {
	return &MeasurementPipeline{
		config:    cfg,
		publisher: publisher,
		logger:    logger,
	}
}

// Process 处理一次测量
// q: 调用方的事务句柄——所有落库与批次消费在同一事务内提交
func (p *MeasurementPipeline) Process(
	ctx context.Context,
	q repository.DBTX,
	patientID string,
	heartRate int,
	inactivitySeconds int,
	isFall bool,
) (*models.Measurement, *models.Alert, error) {
	// 1. 读取患者阈值（缺失时用全局默认）
	thresholdsRepo := repository.NewThresholdsRepository(q, p.logger)
	thresholds, err := thresholdsRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get thresholds: %w", err)
	}
	if thresholds == nil {
		thresholds = &models.PatientThresholds{
			PatientID:            patientID,
			BPMLowerLimit:        p.config.Defaults.BPMLowerLimit,
			BPMUpperLimit:        p.config.Defaults.BPMUpperLimit,
			MaxInactivitySeconds: p.config.Defaults.MaxInactivitySeconds,
		}
	}

	// 2. 评估
	result := evaluator.Evaluate(heartRate, inactivitySeconds, isFall, thresholds)

	// 3. 落库测量
	measurement := &models.Measurement{
		PatientID:         patientID,
		HeartRate:         heartRate,
		InactivitySeconds: inactivitySeconds,
		Status:            result.Status,
	}
	measurementRepo := repository.NewMeasurementRepository(q, p.logger)
	if err := measurementRepo.Insert(ctx, measurement); err != nil {
		return nil, nil, fmt.Errorf("failed to save measurement: %w", err)
	}

	// 4. 发布测量通知（总是）
	event, err := notifier.NewMeasurementEvent(measurement)
	if err != nil {
		return nil, nil, err
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		// 通知失败不中断流水线
		p.logger.Error("Failed to publish measurement event",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
	metrics.EventsPublished.WithLabelValues(string(notifier.KindNewMeasurement)).Inc()

	// 5. 有报警内容时落库并发布报警
	var alert *models.Alert
	if result.AlertMessage != "" {
		alert = &models.Alert{
			PatientID: patientID,
			Message:   result.AlertMessage,
		}
		alertRepo := repository.NewAlertRepository(q, p.logger)
		if err := alertRepo.Insert(ctx, alert); err != nil {
			return nil, nil, fmt.Errorf("failed to save alert: %w", err)
		}

		alertEvent, err := notifier.NewAlertEvent(alert)
		if err != nil {
			return nil, nil, err
		}
		if err := p.publisher.Publish(ctx, alertEvent); err != nil {
			p.logger.Error("Failed to publish alert event",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
		metrics.EventsPublished.WithLabelValues(string(notifier.KindAlert)).Inc()

		p.logger.Warn("Alert created",
			zap.String("patient_id", patientID),
			zap.String("status", result.Status),
			zap.String("message", result.AlertMessage),
		)
	}

	return measurement, alert, nil
}
