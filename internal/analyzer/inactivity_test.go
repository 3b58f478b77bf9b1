package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// 静止样本：恒定1g，无波动
func stillSamples() models.AxisSamples {
	return models.AxisSamples{
		X: []float64{0, 0, 0, 0, 0},
		Y: []float64{0, 0, 0, 0, 0},
		Z: []float64{1.0, 1.0, 1.0, 1.0, 1.0},
	}
}

// 活动样本：明显波动
func movingSamples() models.AxisSamples {
	return models.AxisSamples{
		X: []float64{0.5, 1.2, 0.1, 0.9, 0.3},
		Y: []float64{0.4, 0.8, 1.1, 0.2, 0.7},
		Z: []float64{1.0, 0.5, 1.4, 0.8, 1.2},
	}
}

func TestEstimateInactivity_MovingResetsToZero(t *testing.T) {
	last := 1000.0
	seconds, isMoving := EstimateInactivity(movingSamples(), 2000.0, &last, DefaultInactivityParams())

	// 有移动时不活动时间归零，无论历史如何
	assert.True(t, isMoving)
	assert.Equal(t, 0, seconds)
}

func TestEstimateInactivity_StillWithHistory(t *testing.T) {
	last := 1700.0
	seconds, isMoving := EstimateInactivity(stillSamples(), 2000.0, &last, DefaultInactivityParams())

	assert.False(t, isMoving)
	assert.Equal(t, 300, seconds)
}

func TestEstimateInactivity_StillFirstObservation(t *testing.T) {
	seconds, isMoving := EstimateInactivity(stillSamples(), 2000.0, nil, DefaultInactivityParams())

	assert.False(t, isMoving)
	assert.Equal(t, 0, seconds)
}

func TestEstimateInactivity_ClockSkewClampedToZero(t *testing.T) {
	// 历史时间晚于当前时间时不返回负值
	last := 2500.0
	seconds, isMoving := EstimateInactivity(stillSamples(), 2000.0, &last, DefaultInactivityParams())

	assert.False(t, isMoving)
	assert.Equal(t, 0, seconds)
}

func TestEstimateInactivity_EmptyInput(t *testing.T) {
	seconds, isMoving := EstimateInactivity(models.AxisSamples{}, 2000.0, nil, DefaultInactivityParams())

	assert.False(t, isMoving)
	assert.Equal(t, 0, seconds)
}

func TestEstimateInactivity_MeanOutsideRestingBand(t *testing.T) {
	// 均值明显偏离1g（如持续加速）也判定为移动
	acc := models.AxisSamples{
		X: []float64{1.0, 1.0, 1.0, 1.0},
		Y: []float64{1.0, 1.0, 1.0, 1.0},
		Z: []float64{1.0, 1.0, 1.0, 1.0},
	}

	seconds, isMoving := EstimateInactivity(acc, 2000.0, nil, DefaultInactivityParams())

	assert.True(t, isMoving)
	assert.Equal(t, 0, seconds)
}
