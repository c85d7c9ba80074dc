package broadcast

import (
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/timing"
)

// NextInterval draws the time until an emitter should fire again, uniformly
// from [lower, upper) seconds. Without prewarm, lower is at least one second;
// with prewarm, lower is zero. upper is never below lower, and the interval
// is exactly lower when the two meet.
func NextInterval(
	rng random.Source,
	minimumWait, maximumWait int,
	prewarm bool,
) timing.VTimeInSec {
	lower := 0
	if !prewarm {
		lower = max(1, minimumWait)
	}

	upper := max(lower, maximumWait)

	return timing.VTimeInSec(rng.UniformInt(lower, upper))
}
