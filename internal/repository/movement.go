package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// MovementRepository 患者移动状态仓库（patient_states 表）
// 跨批次的不活动计算依赖这里的 last_movement_at
type MovementRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewMovementRepository 创建移动状态仓库
func NewMovementRepository(db DBTX, logger *zap.Logger) *MovementRepository {
	return &MovementRepository{
		db:     db,
		logger: logger,
	}
}

// GetLastMovement 读取患者的最后移动时间
// 无记录或尚未观测到移动时返回 (nil, nil)
func (r *MovementRepository) GetLastMovement(ctx context.Context, patientID string) (*time.Time, error) {
	var lastMovement sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT last_movement_at FROM patient_states WHERE patient_id = $1",
		patientID,
	).Scan(&lastMovement)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last movement: %w", err)
	}

	if !lastMovement.Valid {
		return nil, nil
	}
	return &lastMovement.Time, nil
}

// UpsertLastMovement 写入最后移动时间（幂等upsert，最后写入生效）
func (r *MovementRepository) UpsertLastMovement(ctx context.Context, patientID string, movedAt time.Time) error {
	query := `
		INSERT INTO patient_states (patient_id, last_movement_at, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (patient_id)
		DO UPDATE SET last_movement_at = EXCLUDED.last_movement_at, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, patientID, movedAt); err != nil {
		return fmt.Errorf("failed to upsert last movement: %w", err)
	}

	return nil
}

// ListTrackedPatients 列出所有有已知移动时间的患者（阈值缺失用回退值）
// 扫描器用它计算每个患者的当前不活动时长
// defaultMaxInactivity: max_inactivity_seconds 为空时的回退值
func (r *MovementRepository) ListTrackedPatients(ctx context.Context, defaultMaxInactivity int) ([]models.OverduePatient, error) {
	query := `
		SELECT ps.patient_id, ps.last_movement_at, COALESCE(pset.max_inactivity_seconds, $1)
		FROM patient_states ps
		LEFT JOIN patient_settings pset ON ps.patient_id = pset.patient_id
		WHERE ps.last_movement_at IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, defaultMaxInactivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked patients: %w", err)
	}
	defer rows.Close()

	var patients []models.OverduePatient
	for rows.Next() {
		var p models.OverduePatient
		if err := rows.Scan(&p.PatientID, &p.LastMovementAt, &p.MaxInactivitySeconds); err != nil {
			return nil, fmt.Errorf("failed to scan tracked patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracked patients: %w", err)
	}

	return patients, nil
}
