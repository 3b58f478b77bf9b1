package analyzer

import (
	"math"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
)

// SMV 计算单个三轴采样的信号幅值向量（Signal Magnitude Vector，单位 g）
func SMV(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// SMVSeries 逐元素计算加速度计数组的SMV序列
// 三轴数组长度不一致时按最短长度截断；空输入返回空序列
func SMVSeries(acc models.AxisSamples) []float64 {
	length := acc.MinLen()

	series := make([]float64, 0, length)
	for i := 0; i < length; i++ {
		series = append(series, SMV(acc.X[i], acc.Y[i], acc.Z[i]))
	}
	return series
}

// meanStdDev 计算序列的均值和标准差（总体标准差）
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
