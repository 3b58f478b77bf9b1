package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// BatchRepository 传感器批次队列仓库（sensor_data_queue 表）
type BatchRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewBatchRepository 创建批次仓库
func NewBatchRepository(db DBTX, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

// Enqueue 入队一个原始批次（摄入侧调用）
// 采样数组以JSONB存储；回填生成的 id 和 created_at
func (r *BatchRepository) Enqueue(ctx context.Context, batch *models.SensorBatch) error {
	accJSON, err := json.Marshal(batch.Accelerometer)
	if err != nil {
		return fmt.Errorf("failed to marshal accelerometer: %w", err)
	}
	gyroJSON, err := json.Marshal(batch.Gyroscope)
	if err != nil {
		return fmt.Errorf("failed to marshal gyroscope: %w", err)
	}
	ppgJSON, err := json.Marshal(batch.PPGRaw)
	if err != nil {
		return fmt.Errorf("failed to marshal ppg: %w", err)
	}

	query := `
		INSERT INTO sensor_data_queue (patient_id, timestamp, accelerometer, gyroscope, ppg_raw, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		batch.PatientID,
		batch.Timestamp,
		accJSON,
		gyroJSON,
		ppgJSON,
	).Scan(&batch.ID, &batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue sensor batch: %w", err)
	}

	return nil
}

// ClaimOldest 认领最旧的未消费批次
//
// FOR UPDATE SKIP LOCKED：已被其他worker锁定的行直接跳过而不是等待，
// 多个worker可以并行认领不同的批次。必须在事务内调用，
// 行锁持续到事务提交/回滚。没有可认领批次时返回 (nil, nil)
func (r *BatchRepository) ClaimOldest(ctx context.Context, tx DBTX) (*models.SensorBatch, error) {
	query := `
		SELECT id, patient_id, timestamp, accelerometer, gyroscope, ppg_raw, processed, created_at
		FROM sensor_data_queue
		WHERE processed = FALSE
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`

	var (
		batch    models.SensorBatch
		accJSON  []byte
		gyroJSON []byte
		ppgJSON  []byte
	)

	err := tx.QueryRowContext(ctx, query).Scan(
		&batch.ID,
		&batch.PatientID,
		&batch.Timestamp,
		&accJSON,
		&gyroJSON,
		&ppgJSON,
		&batch.Processed,
		&batch.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim sensor batch: %w", err)
	}

	if err := json.Unmarshal(accJSON, &batch.Accelerometer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accelerometer: %w", err)
	}
	if err := json.Unmarshal(gyroJSON, &batch.Gyroscope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gyroscope: %w", err)
	}
	if err := json.Unmarshal(ppgJSON, &batch.PPGRaw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ppg: %w", err)
	}

	return &batch, nil
}

// MarkProcessed 标记批次已消费（processed 单向翻转 false→true）
// 与结果落库在同一事务内执行，提交前崩溃则批次保持可重试
func (r *BatchRepository) MarkProcessed(ctx context.Context, tx DBTX, batchID int64) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE sensor_data_queue SET processed = TRUE WHERE id = $1",
		batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark batch processed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("batch not found: %d", batchID)
	}

	return nil
}

// CountPending 统计未消费批次数量（用于队列深度指标）
func (r *BatchRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sensor_data_queue WHERE processed = FALSE",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending batches: %w", err)
	}
	return count, nil
}
