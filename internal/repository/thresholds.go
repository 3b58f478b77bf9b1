package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// ThresholdsRepository 患者阈值配置仓库（patient_settings 表，核心侧只读）
type ThresholdsRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewThresholdsRepository 创建阈值仓库
func NewThresholdsRepository(db DBTX, logger *zap.Logger) *ThresholdsRepository {
	return &ThresholdsRepository{
		db:     db,
		logger: logger,
	}
}

// GetByPatientID 读取单个患者的阈值配置
// 未配置时返回 (nil, nil)，调用方使用默认阈值
func (r *ThresholdsRepository) GetByPatientID(ctx context.Context, patientID string) (*models.PatientThresholds, error) {
	query := `
		SELECT patient_id, bpm_lower_limit, bpm_upper_limit, max_inactivity_seconds
		FROM patient_settings
		WHERE patient_id = $1`

	var t models.PatientThresholds
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(
		&t.PatientID,
		&t.BPMLowerLimit,
		&t.BPMUpperLimit,
		&t.MaxInactivitySeconds,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient thresholds: %w", err)
	}

	return &t, nil
}
