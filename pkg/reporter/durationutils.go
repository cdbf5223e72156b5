package reporter

import "time"

// roundingSteps maps a lower bound to the precision durations above it are displayed with.
var roundingSteps = []struct {
	above time.Duration
	step  time.Duration
}{
	{above: time.Minute, step: 10 * time.Second},
	{above: time.Second, step: 10 * time.Millisecond},
	{above: time.Millisecond, step: 10 * time.Microsecond},
	{above: time.Microsecond, step: 10 * time.Nanosecond},
}

// roundDuration keeps about three significant digits of a latency for display.
func roundDuration(dur time.Duration) time.Duration {
	for _, s := range roundingSteps {
		if dur > s.above {
			return dur.Round(s.step)
		}
	}
	return dur
}

// ms converts the duration to fractional milliseconds, the unit of CSV and per-target JSON latencies.
func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// statDuration converts a montanaflynn/stats result measured in nanoseconds, errors map to zero.
func statDuration(v float64, err error) time.Duration {
	if err != nil {
		return 0
	}
	return time.Duration(v)
}
