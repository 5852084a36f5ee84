package kernel

import (
	"math"

	"tock/hal"
)

const (
	// lapicDivideBy1 is the divide configuration register value for /1.
	lapicDivideBy1 = 0b1011
	lapicCountMax  = math.MaxUint32
)

// InitializeLAPICTimer measures the local timer's input frequency against
// clock over calibrationMillis, then starts it in periodic mode so that
// VectorLAPICTimer fires hz times per second. It returns the measured
// frequency in counts per second.
func InitializeLAPICTimer(t hal.LAPICTimer, clock hal.Clock, hz, calibrationMillis int) uint64 {
	if calibrationMillis <= 0 {
		calibrationMillis = DefaultCalibrationMillis
	}
	if hz <= 0 {
		hz = DefaultTimerHz
	}

	t.SetDivide(lapicDivideBy1)
	t.SetLVT(hal.TimerOneShot, 0, true)
	t.SetInitialCount(lapicCountMax)
	clock.WaitMilliseconds(calibrationMillis)
	elapsed := uint64(lapicCountMax - t.CurrentCount())
	t.SetInitialCount(0)

	freq := elapsed * 1000 / uint64(calibrationMillis)

	count := freq / uint64(hz)
	if count == 0 {
		count = 1
	}
	if count > lapicCountMax {
		count = lapicCountMax
	}
	t.SetDivide(lapicDivideBy1)
	t.SetLVT(hal.TimerPeriodic, VectorLAPICTimer, false)
	t.SetInitialCount(uint32(count))
	return freq
}
