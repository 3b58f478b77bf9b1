package analyzer

// BPM结果的物理合理区间
const (
	bpmLowerClamp = 20
	bpmUpperClamp = 250
)

// EstimateBPM 通过简单峰值计数从原始PPG数据估算心率
// 峰值定义：严格高于序列均值，且严格高于左右相邻样本
// 样本数少于2时返回 0；结果截断到 [20, 250]
func EstimateBPM(ppgRaw []int, samplingRateHz int) int {
	if len(ppgRaw) < 2 || samplingRateHz <= 0 {
		return 0
	}

	// 均值作为峰值门限
	var sum int
	for _, v := range ppgRaw {
		sum += v
	}
	threshold := float64(sum) / float64(len(ppgRaw))

	peaks := 0
	for i := 1; i < len(ppgRaw)-1; i++ {
		if float64(ppgRaw[i]) > threshold && ppgRaw[i] > ppgRaw[i-1] && ppgRaw[i] > ppgRaw[i+1] {
			peaks++
		}
	}

	durationSec := float64(len(ppgRaw)) / float64(samplingRateHz)
	if durationSec == 0 {
		return 0
	}

	bpm := int(float64(peaks) / durationSec * 60)

	if bpm < bpmLowerClamp {
		return bpmLowerClamp
	}
	if bpm > bpmUpperClamp {
		return bpmUpperClamp
	}
	return bpm
}
