package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// MeasurementRepository 测量结果仓库（measurements 表，只追加）
type MeasurementRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewMeasurementRepository 创建测量仓库
func NewMeasurementRepository(db DBTX, logger *zap.Logger) *MeasurementRepository {
	return &MeasurementRepository{
		db:     db,
		logger: logger,
	}
}

// Insert 追加一条测量记录，回填 id 和 measured_at
func (r *MeasurementRepository) Insert(ctx context.Context, m *models.Measurement) error {
	query := `
		INSERT INTO measurements (patient_id, heart_rate, inactivity_seconds, status, measured_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, measured_at`

	err := r.db.QueryRowContext(ctx, query,
		m.PatientID,
		m.HeartRate,
		m.InactivitySeconds,
		m.Status,
	).Scan(&m.ID, &m.MeasuredAt)
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}

	return nil
}
