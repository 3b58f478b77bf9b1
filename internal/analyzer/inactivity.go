package analyzer

import (
	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// 移动判定参数：标准差超过该值说明有明显活动
const movementStdDev = 0.1

// 静止区间下界：均值落在 (0.9, StillnessThreshold) 之外视为移动
const restingLowerBound = 0.9

// InactivityParams 不活动检测参数
type InactivityParams struct {
	StillnessThreshold float64 // 静止阈值（~1g）
}

// DefaultInactivityParams 默认不活动检测参数
func DefaultInactivityParams() InactivityParams {
	return InactivityParams{StillnessThreshold: 1.1}
}

// EstimateInactivity 计算不活动持续时间
//
// 移动判定：SMV序列标准差 > 0.1，或均值偏离静息区间 (0.9, StillnessThreshold)。
// 有移动时不活动时间归零（无论历史状态如何）；
// 静止且存在历史移动时间时，返回 max(0, currentTS - lastMovement)；
// 静止但没有历史（首次观测）时返回 0。
//
// 返回 (inactivitySeconds, isMoving)
func EstimateInactivity(acc models.AxisSamples, currentTS float64, lastMovement *float64, p InactivityParams) (int, bool) {
	smvValues := SMVSeries(acc)

	if len(smvValues) == 0 {
		return 0, false
	}

	mean, stdDev := meanStdDev(smvValues)

	isMoving := stdDev > movementStdDev || !(mean > restingLowerBound && mean < p.StillnessThreshold)

	if isMoving {
		return 0, true
	}

	if lastMovement != nil {
		delta := currentTS - *lastMovement
		if delta < 0 {
			delta = 0
		}
		return int(delta), false
	}

	// 首个批次，没有历史
	return 0, false
}
