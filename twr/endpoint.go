package twr

import (
	"time"

	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/types"
)

// Config holds the protocol timing and estimator parameters of an endpoint.
type Config struct {
	// RangingTimeout bounds every receive of an ongoing exchange. A hung
	// peer can stall an attempt at most this long.
	RangingTimeout time.Duration

	// Turnaround is the fixed radio turn-around delay a responder schedules
	// between receiving a frame and sending its reply.
	Turnaround time.Duration

	Estimator EstimatorParams
}

func DefaultConfig() Config {
	return Config{
		RangingTimeout: 100 * time.Millisecond,
		Turnaround:     500 * time.Microsecond,
		Estimator:      DefaultEstimatorParams(),
	}
}

// Endpoint is one node's side of the DS-TWR protocol. It owns the node's
// sequence counter and the exchange-in-progress flag; both are only touched
// by the single session goroutine, reflecting the half-duplex radio.
type Endpoint struct {
	id  types.NodeId
	tr  radio.Transport
	est *Estimator
	cfg Config

	seq        uint8
	inExchange bool
}

func NewEndpoint(id types.NodeId, tr radio.Transport, cfg Config) *Endpoint {
	return &Endpoint{
		id:  id,
		tr:  tr,
		est: NewEstimator(cfg.Estimator),
		cfg: cfg,
	}
}

func (ep *Endpoint) Id() types.NodeId {
	return ep.id
}

// nextSeq yields the next outgoing sequence number. Strictly increasing per
// node, wrapping at 8 bits; never reused concurrently since only one
// exchange is ever in flight.
func (ep *Endpoint) nextSeq() uint8 {
	ep.seq++
	return ep.seq
}

// turnaroundTicks converts the configured turn-around delay into local clock
// ticks of the attached transport.
func (ep *Endpoint) turnaroundTicks() radio.Ticks {
	return radio.Ticks(ep.cfg.Turnaround.Seconds() / ep.tr.TickSeconds())
}
