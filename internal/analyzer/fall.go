package analyzer

import (
	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// FallType 跌倒分类结果
type FallType string

const (
	FallNone             FallType = "NONE"              // 无冲击
	FallImpactOnly       FallType = "IMPACT_ONLY"       // 仅有冲击（剧烈动作，不算跌倒）
	FallFreefallImpact   FallType = "FREEFALL_IMPACT"   // 自由落体+冲击（高概率跌倒）
	FallImpactStillness  FallType = "IMPACT_STILLNESS"  // 冲击+静止（可能跌倒）
	FallFullPattern      FallType = "FULL_PATTERN"      // 完整三阶段（最可靠的跌倒）
	FallSevereImpact     FallType = "SEVERE_IMPACT"     // 剧烈冲击（安全兜底，按跌倒处理）
	FallInsufficientData FallType = "INSUFFICIENT_DATA" // 样本不足
)

// FallParams 跌倒检测参数
type FallParams struct {
	ImpactThreshold       float64 // 冲击阈值（g）
	FreefallThreshold     float64 // 自由落体阈值（g）
	StillnessThreshold    float64 // 静止阈值（~1g）
	StillnessSamples      int     // 静止判断所需样本数
	SevereImpactThreshold float64 // 剧烈冲击阈值（g）
}

// DefaultFallParams 默认跌倒检测参数
func DefaultFallParams() FallParams {
	return FallParams{
		ImpactThreshold:       3.0,
		FreefallThreshold:     0.5,
		StillnessThreshold:    1.15,
		StillnessSamples:      5,
		SevereImpactThreshold: 4.0,
	}
}

// 静止区间下界：冲击后SMV回到约1g（0.85 - StillnessThreshold）视为静止
const stillnessLowerBound = 0.85

// ClassifyFall 三阶段跌倒检测
//
// 跌倒的三个SMV阶段：
//  1. Free-fall（自由落体）：SMV < FreefallThreshold
//  2. Impact（冲击）：SMV > ImpactThreshold
//  3. Stillness（静止）：冲击后SMV回落到约1g
//
// 决策按优先级排列，宁可误报不可漏报（安全偏置）
func ClassifyFall(acc models.AxisSamples, p FallParams) (bool, FallType) {
	smvValues := SMVSeries(acc)

	if len(smvValues) < 3 {
		return false, FallInsufficientData
	}

	// 阶段检测：记录最后一次冲击的下标
	freefallDetected := false
	impactDetected := false
	impactIndex := -1

	for i, smv := range smvValues {
		if smv < p.FreefallThreshold {
			freefallDetected = true
		}
		if smv > p.ImpactThreshold {
			impactDetected = true
			impactIndex = i
		}
	}

	// 没有冲击就没有跌倒
	if !impactDetected {
		return false, FallNone
	}

	// 冲击后静止检查：只在冲击后剩余足够样本时判断
	stillnessDetected := false
	if impactIndex >= 0 && impactIndex+p.StillnessSamples < len(smvValues) {
		postImpact := smvValues[impactIndex+1 : impactIndex+1+p.StillnessSamples]
		var sum float64
		for _, v := range postImpact {
			sum += v
		}
		avgPostImpact := sum / float64(len(postImpact))

		if avgPostImpact > stillnessLowerBound && avgPostImpact < p.StillnessThreshold {
			stillnessDetected = true
		}
	}

	switch {
	case freefallDetected && stillnessDetected:
		return true, FallFullPattern
	case freefallDetected:
		return true, FallFreefallImpact
	case stillnessDetected:
		return true, FallImpactStillness
	}

	// 仅有冲击：峰值超过剧烈冲击阈值时按跌倒处理（兜底）
	maxSMV := smvValues[0]
	for _, v := range smvValues[1:] {
		if v > maxSMV {
			maxSMV = v
		}
	}
	if maxSMV > p.SevereImpactThreshold {
		return true, FallSevereImpact
	}

	return false, FallImpactOnly
}
