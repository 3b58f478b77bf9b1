package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// EventKind 通知事件类型
type EventKind string

const (
	KindNewMeasurement EventKind = "new_measurement"
	KindAlert          EventKind = "alert"
)

// Event 通知事件（瞬态，不落库）
// 仅存在于fan-out通道上：发布时在线的订阅者各收到一次，
// 之后连接的订阅者收不到历史事件
type Event struct {
	EventID   string          `json:"event_id"` // 追踪用ID
	Kind      EventKind       `json:"kind"`
	PatientID string          `json:"patient_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher 事件发布接口
// 进程内Hub和Redis中继是同一能力的两种可互换传输实现
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MeasurementPayload 测量事件载荷（时间为RFC 3339文本）
type MeasurementPayload struct {
	PatientID         string `json:"patient_id"`
	HeartRate         int    `json:"heart_rate"`
	InactivitySeconds int    `json:"inactivity_seconds"`
	Status            string `json:"status"`
	MeasuredAt        string `json:"measured_at"`
}

// AlertPayload 报警事件载荷
type AlertPayload struct {
	ID         int64  `json:"id"`
	PatientID  string `json:"patient_id"`
	Message    string `json:"message"`
	IsResolved bool   `json:"is_resolved"`
	CreatedAt  string `json:"created_at"`
}

// NewMeasurementEvent 从测量记录构建通知事件
func NewMeasurementEvent(m *models.Measurement) (Event, error) {
	payload, err := json.Marshal(MeasurementPayload{
		PatientID:         m.PatientID,
		HeartRate:         m.HeartRate,
		InactivitySeconds: m.InactivitySeconds,
		Status:            m.Status,
		MeasuredAt:        m.MeasuredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal measurement payload: %w", err)
	}

	return Event{
		EventID:   uuid.New().String(),
		Kind:      KindNewMeasurement,
		PatientID: m.PatientID,
		Payload:   payload,
	}, nil
}

// NewAlertEvent 从报警记录构建通知事件
func NewAlertEvent(a *models.Alert) (Event, error) {
	payload, err := json.Marshal(AlertPayload{
		ID:         a.ID,
		PatientID:  a.PatientID,
		Message:    a.Message,
		IsResolved: a.IsResolved,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	return Event{
		EventID:   uuid.New().String(),
		Kind:      KindAlert,
		PatientID: a.PatientID,
		Payload:   payload,
	}, nil
}
