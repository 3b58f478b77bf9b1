package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// AlertRepository 报警记录仓库（emergency_logs 表）
type AlertRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewAlertRepository 创建报警仓库
func NewAlertRepository(db DBTX, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// Insert 追加一条报警记录（is_resolved 默认 false），回填 id 和 created_at
func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO emergency_logs (patient_id, message, is_resolved, created_at)
		VALUES ($1, $2, FALSE, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		alert.PatientID,
		alert.Message,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// CountRecentByMarker 统计患者在时间窗口内消息包含指定标记的报警数量
// 扫描器用它做重复报警抑制（debounce）
func (r *AlertRepository) CountRecentByMarker(ctx context.Context, patientID, marker string, window time.Duration) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM emergency_logs
		WHERE patient_id = $1
		AND message LIKE '%' || $2 || '%'
		AND created_at > NOW() - ($3 * INTERVAL '1 second')`

	var count int
	err := r.db.QueryRowContext(ctx, query, patientID, marker, int(window.Seconds())).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent alerts: %w", err)
	}

	return count, nil
}
