package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// 完整三阶段跌倒样本：前段自由落体、中段冲击、尾段静止
func fullPatternSamples() models.AxisSamples {
	return models.AxisSamples{
		X: []float64{0, 0, 0, 2.2, 2.3, 0, 0, 0, 0, 0},
		Y: []float64{0, 0, 0, 1.8, 1.9, 0, 0, 0, 0, 0},
		Z: []float64{0.3, 0.3, 0.3, 1.0, 1.0, 0.98, 0.98, 0.98, 0.98, 0.98},
	}
}

func TestClassifyFall_FullPattern(t *testing.T) {
	isFall, fallType := ClassifyFall(fullPatternSamples(), DefaultFallParams())

	assert.True(t, isFall)
	assert.Equal(t, FallFullPattern, fallType)
}

func TestClassifyFall_Deterministic(t *testing.T) {
	acc := fullPatternSamples()
	p := DefaultFallParams()

	isFall1, type1 := ClassifyFall(acc, p)
	isFall2, type2 := ClassifyFall(acc, p)

	assert.Equal(t, isFall1, isFall2)
	assert.Equal(t, type1, type2)
}

func TestClassifyFall_InsufficientData(t *testing.T) {
	acc := models.AxisSamples{
		X: []float64{0, 0},
		Y: []float64{0, 0},
		Z: []float64{1, 1},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.False(t, isFall)
	assert.Equal(t, FallInsufficientData, fallType)
}

func TestClassifyFall_NoImpact(t *testing.T) {
	// 正常行走区间：没有任何超过冲击阈值的样本
	acc := models.AxisSamples{
		X: []float64{0.1, 0.2, 0.1, 0.3, 0.2},
		Y: []float64{0.1, 0.1, 0.2, 0.1, 0.1},
		Z: []float64{1.0, 1.1, 0.95, 1.05, 1.0},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.False(t, isFall)
	assert.Equal(t, FallNone, fallType)
}

func TestClassifyFall_FreefallImpact(t *testing.T) {
	// 自由落体+冲击，但冲击后样本不足以确认静止
	acc := models.AxisSamples{
		X: []float64{0, 0, 0, 3.5},
		Y: []float64{0, 0, 0, 0},
		Z: []float64{0.2, 0.2, 0.2, 0.5},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.True(t, isFall)
	assert.Equal(t, FallFreefallImpact, fallType)
}

func TestClassifyFall_ImpactStillness(t *testing.T) {
	// 无自由落体阶段，冲击后静止
	acc := models.AxisSamples{
		X: []float64{0.5, 0.5, 3.5, 0, 0, 0, 0, 0, 0},
		Y: []float64{0.5, 0.5, 0.5, 0, 0, 0, 0, 0, 0},
		Z: []float64{0.9, 0.9, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.True(t, isFall)
	assert.Equal(t, FallImpactStillness, fallType)
}

func TestClassifyFall_SevereImpact(t *testing.T) {
	// 仅有剧烈冲击：SMV峰值超过 4.0g，安全兜底按跌倒处理
	acc := models.AxisSamples{
		X: []float64{0.6, 4.5, 2.0},
		Y: []float64{0.6, 0.5, 2.0},
		Z: []float64{0.9, 1.0, 2.0},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.True(t, isFall)
	assert.Equal(t, FallSevereImpact, fallType)
}

func TestClassifyFall_ImpactOnly(t *testing.T) {
	// 中等冲击后继续活动：剧烈动作，不算跌倒
	acc := models.AxisSamples{
		X: []float64{0.6, 3.2, 2.0, 1.8, 2.2, 1.9, 2.1, 2.0},
		Y: []float64{0.6, 0.5, 1.0, 1.2, 0.8, 1.1, 0.9, 1.0},
		Z: []float64{0.9, 0.8, 1.5, 1.4, 1.6, 1.3, 1.5, 1.4},
	}

	isFall, fallType := ClassifyFall(acc, DefaultFallParams())

	assert.False(t, isFall)
	assert.Equal(t, FallImpactOnly, fallType)
}
