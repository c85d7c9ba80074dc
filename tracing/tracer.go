// Package tracing turns scheduler hooks into traces. A Tracer attached with
// CollectTrace sees every broadcast, cancellation, failure and re-arm.
package tracing

import (
	"github.com/sarchlab/advertise/broadcast"
)

// A Tracer collects what emitters do.
type Tracer interface {
	Broadcasted(b broadcast.Broadcast)
	Cancelled(a broadcast.AttemptBroadcast)
	Failed(f broadcast.FailedBroadcast)
	Rearmed(r broadcast.Rearm)
}
