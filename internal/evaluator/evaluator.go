package evaluator

import (
	"fmt"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// 默认阈值（patient_settings 缺失时使用）
const (
	DefaultBPMLowerLimit        = 50
	DefaultBPMUpperLimit        = 120
	DefaultMaxInactivitySeconds = 900 // 15分钟
)

// InactivityAlertMarker 不活动报警的消息标记（扫描器去重时按其匹配）
const InactivityAlertMarker = "High Inactivity"

// Result 阈值评估结果
type Result struct {
	Status       string // NORMAL / WARNING / CRITICAL
	AlertMessage string // 为空表示不产生报警
}

// Evaluate 将测量值与患者阈值比对，确定状态和报警内容
//
// 优先级（命中即返回，互斥）：
//  1. 跌倒 → CRITICAL
//  2. 心率越界 → CRITICAL（历史上处理器曾用WARNING，现统一为CRITICAL）
//  3. 不活动超限 → WARNING
//  4. 其他 → NORMAL，无报警
//
// 纯函数，不访问存储
func Evaluate(heartRate int, inactivitySeconds int, isFall bool, thresholds *models.PatientThresholds) Result {
	bpmLower := DefaultBPMLowerLimit
	bpmUpper := DefaultBPMUpperLimit
	maxInactivity := DefaultMaxInactivitySeconds

	if thresholds != nil {
		bpmLower = thresholds.BPMLowerLimit
		bpmUpper = thresholds.BPMUpperLimit
		maxInactivity = thresholds.MaxInactivitySeconds
	}

	// 跌倒优先级最高
	if isFall {
		return Result{
			Status:       models.StatusCritical,
			AlertMessage: "FALL DETECTED!",
		}
	}

	if heartRate < bpmLower || heartRate > bpmUpper {
		return Result{
			Status:       models.StatusCritical,
			AlertMessage: fmt.Sprintf("Abnormal Heart Rate: %d BPM (Limit: %d-%d)", heartRate, bpmLower, bpmUpper),
		}
	}

	if inactivitySeconds > maxInactivity {
		return Result{
			Status:       models.StatusWarning,
			AlertMessage: fmt.Sprintf("%s: %ds (Limit: %ds)", InactivityAlertMarker, inactivitySeconds, maxInactivity),
		}
	}

	return Result{Status: models.StatusNormal}
}
