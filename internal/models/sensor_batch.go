package models

import (
	"time"
)

// AxisSamples 三轴传感器采样数组（加速度计/陀螺仪共用）
// 三个轴的数组长度应相同；不相同时下游按最短长度截断
type AxisSamples struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

// MinLen 返回三轴数组中的最短长度
func (a AxisSamples) MinLen() int {
	n := len(a.X)
	if len(a.Y) < n {
		n = len(a.Y)
	}
	if len(a.Z) < n {
		n = len(a.Z)
	}
	return n
}

// SensorBatch 传感器数据批次（对应 sensor_data_queue 表）
// processed 标志单向翻转（false→true），由队列消费者独占修改
type SensorBatch struct {
	ID            int64       `json:"id" db:"id"`
	PatientID     string      `json:"patient_id" db:"patient_id"`
	Timestamp     float64     `json:"timestamp" db:"timestamp"` // 采集时间（Unix秒）
	Accelerometer AxisSamples `json:"accelerometer" db:"accelerometer"`
	Gyroscope     AxisSamples `json:"gyroscope" db:"gyroscope"`
	PPGRaw        []int       `json:"ppg_raw" db:"ppg_raw"`
	Processed     bool        `json:"processed" db:"processed"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}
