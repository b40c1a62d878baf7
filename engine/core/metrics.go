package core

import "sync"

const AVG_COUNT uint8 = 30

/** @brief Per-frame counters reported by the binding layer. */
type BindingStats struct {
	/** @brief Uniform writes that reached the device. */
	UniformWrites uint64
	/** @brief Uniform writes suppressed because the cached value matched. */
	UniformSkips uint64
	/** @brief Texture-to-unit binds issued. */
	TextureBinds uint64
	/** @brief Bytes written into mapped light/camera blocks. */
	BlockBytes uint64
}

func (b *BindingStats) Add(other BindingStats) {
	b.UniformWrites += other.UniformWrites
	b.UniformSkips += other.UniformSkips
	b.TextureBinds += other.TextureBinds
	b.BlockBytes += other.BlockBytes
}

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	// Binding counters accumulated since the last FPS rollover.
	Binding BindingStats
	// Binding counters of the last completed one-second window.
	LastBinding BindingStats
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: [AVG_COUNT]float64{0},
		}
	})
	return nil
}

// MetricsUpdate records one frame. It returns true when a one-second window
// just closed, which is when FPS and LastBinding are refreshed.
func MetricsUpdate(frameElapsedTime float64) bool {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes[metricsState.FrameAVGCounter] = frameMS
	if metricsState.FrameAVGCounter == AVG_COUNT-1 {
		metricsState.MSavg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			metricsState.MSavg += metricsState.MStimes[i]
		}
		metricsState.MSavg /= float64(AVG_COUNT)
	}
	metricsState.FrameAVGCounter++
	metricsState.FrameAVGCounter %= AVG_COUNT

	// Count all Frames.
	metricsState.Frames++

	// Calculate Frames per second.
	rolled := false
	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
		metricsState.LastBinding = metricsState.Binding
		metricsState.Binding = BindingStats{}
		rolled = true
	}
	return rolled
}

func MetricsRecordBinding(stats BindingStats) {
	metricsState.Binding.Add(stats)
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.FPS, metricsState.MSavg
}

func MetricsBinding() BindingStats {
	return metricsState.LastBinding
}
