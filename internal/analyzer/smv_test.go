package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

func TestSMV(t *testing.T) {
	assert.Equal(t, 0.0, SMV(0, 0, 0))
	assert.Equal(t, 1.0, SMV(0, 0, 1))
	assert.InDelta(t, math.Sqrt(14), SMV(1, 2, 3), 1e-9)
}

func TestSMVSeries_TruncatesToShortestAxis(t *testing.T) {
	acc := models.AxisSamples{
		X: []float64{1, 1, 1, 1, 1},
		Y: []float64{0, 0, 0},
		Z: []float64{0, 0, 0, 0},
	}

	series := SMVSeries(acc)

	// 输出长度等于三轴数组中的最短长度
	assert.Len(t, series, 3)
	for _, v := range series {
		assert.Equal(t, 1.0, v)
	}
}

func TestSMVSeries_Empty(t *testing.T) {
	series := SMVSeries(models.AxisSamples{})

	assert.Empty(t, series)
}

func TestMeanStdDev(t *testing.T) {
	mean, stdDev := meanStdDev([]float64{1, 1, 1, 1})
	assert.Equal(t, 1.0, mean)
	assert.Equal(t, 0.0, stdDev)

	mean, stdDev = meanStdDev([]float64{2, 4})
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 1.0, stdDev)

	mean, stdDev = meanStdDev(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, stdDev)
}
