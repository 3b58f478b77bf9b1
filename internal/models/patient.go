package models

import (
	"time"
)

// PatientThresholds 患者阈值配置（对应 patient_settings 表）
// 由配置管理侧维护，核心流水线只读
type PatientThresholds struct {
	PatientID            string `json:"patient_id" db:"patient_id"`
	BPMLowerLimit        int    `json:"bpm_lower_limit" db:"bpm_lower_limit"`
	BPMUpperLimit        int    `json:"bpm_upper_limit" db:"bpm_upper_limit"`
	MaxInactivitySeconds int    `json:"max_inactivity_seconds" db:"max_inactivity_seconds"`
}

// PatientMovementState 患者移动状态（对应 patient_states 表）
// 每个患者一条记录，由移动跟踪器upsert
type PatientMovementState struct {
	PatientID      string     `json:"patient_id" db:"patient_id"`
	LastMovementAt *time.Time `json:"last_movement_at" db:"last_movement_at"` // 首次观测前为空
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// OverduePatient 扫描器视图：超过不活动上限候选患者
type OverduePatient struct {
	PatientID            string    `json:"patient_id"`
	LastMovementAt       time.Time `json:"last_movement_at"`
	MaxInactivitySeconds int       `json:"max_inactivity_seconds"`
}
