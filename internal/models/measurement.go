package models

import (
	"time"
)

// 测量状态分级
const (
	StatusNormal   = "NORMAL"
	StatusWarning  = "WARNING"
	StatusCritical = "CRITICAL"
)

// Measurement 测量结果（对应 measurements 表，只追加不修改）
type Measurement struct {
	ID                int64     `json:"id" db:"id"`
	PatientID         string    `json:"patient_id" db:"patient_id"`
	HeartRate         int       `json:"heart_rate" db:"heart_rate"`
	InactivitySeconds int       `json:"inactivity_seconds" db:"inactivity_seconds"`
	Status            string    `json:"status" db:"status"`
	MeasuredAt        time.Time `json:"measured_at" db:"measured_at"`
}

// Alert 报警记录（对应 emergency_logs 表）
// is_resolved 仅由外部"resolve"操作修改，核心流水线只创建
type Alert struct {
	ID         int64     `json:"id" db:"id"`
	PatientID  string    `json:"patient_id" db:"patient_id"`
	Message    string    `json:"message" db:"message"`
	IsResolved bool      `json:"is_resolved" db:"is_resolved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
