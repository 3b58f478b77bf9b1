package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateBPM_ConstantSeries(t *testing.T) {
	// 恒定序列没有任何样本严格高于均值，0个峰值 → 下限截断 20
	ppg := make([]int, 25)
	for i := range ppg {
		ppg[i] = 2000
	}

	assert.Equal(t, 20, EstimateBPM(ppg, 25))
}

func TestEstimateBPM_TooFewSamples(t *testing.T) {
	assert.Equal(t, 0, EstimateBPM(nil, 25))
	assert.Equal(t, 0, EstimateBPM([]int{2048}, 25))
}

func TestEstimateBPM_RegularPeaks(t *testing.T) {
	// 25Hz采样、25个样本 = 1秒窗口，周期性峰值
	// 每5个样本一个峰值：5个峰... 第一个和最后一个下标的峰不计
	ppg := make([]int, 25)
	for i := range ppg {
		ppg[i] = 2000
	}
	for _, i := range []int{2, 7, 12, 17, 22} {
		ppg[i] = 2100
	}

	// 5 peaks / 1s × 60 = 300 → 上限截断 250
	assert.Equal(t, 250, EstimateBPM(ppg, 25))
}

func TestEstimateBPM_PhysiologicalRange(t *testing.T) {
	// 5秒窗口（125样本@25Hz），6个峰值 → 72 BPM
	ppg := make([]int, 125)
	for i := range ppg {
		ppg[i] = 2000
	}
	for _, i := range []int{10, 30, 50, 70, 90, 110} {
		ppg[i] = 2200
	}

	assert.Equal(t, 72, EstimateBPM(ppg, 25))
}

func TestEstimateBPM_InvalidSamplingRate(t *testing.T) {
	assert.Equal(t, 0, EstimateBPM([]int{1, 2, 3}, 0))
}
