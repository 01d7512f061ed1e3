// Copyright (c) 2026, The RangeNet Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package radio

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/prng"
	"github.com/uwbprox/rangenet/types"
)

// Position is a node location on the simulated floor plan, in meters.
type Position struct {
	X float64
	Y float64
}

func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AirLinkConfig tunes the simulated channel.
type AirLinkConfig struct {
	TickSeconds     float64 // width of one clock tick in seconds
	NoiseMaxTicks   int64   // max RX timestamp latch jitter, 0 for a clean channel
	LossProbability float64 // per-frame per-receiver loss, 0 for a lossless channel
}

func DefaultAirLinkConfig() AirLinkConfig {
	return AirLinkConfig{
		TickSeconds:     DefaultTickSeconds,
		NoiseMaxTicks:   0,
		LossProbability: 0,
	}
}

// AirLink is an in-memory shared radio medium connecting several
// AirTransports. Every transmitted frame is overheard by all other attached
// nodes after a propagation delay of distance over the speed of light, so
// destination filtering is left to the protocol layer exactly as on a real
// single-channel radio. Each attached node runs its own clock, with its own
// offset and rate, so the drift-cancellation property of double-sided ranging
// is exercised for real.
type AirLink struct {
	mu      sync.Mutex
	cfg     AirLinkConfig
	start   time.Time
	ports   map[types.NodeId]*AirTransport
	capture FrameCapture
}

// FrameCapture receives a serialized copy of every frame put on the air,
// stamped with the medium clock in microseconds.
type FrameCapture interface {
	AppendFrame(timestampUs uint64, data []byte) error
}

func NewAirLink(cfg AirLinkConfig) *AirLink {
	return &AirLink{
		cfg:   cfg,
		start: time.Now(),
		ports: make(map[types.NodeId]*AirTransport),
	}
}

// baseTicks is the shared reference clock of the medium. Individual node
// clocks are derived from it and never exposed to each other.
func (a *AirLink) baseTicks() float64 {
	return time.Since(a.start).Seconds() / a.cfg.TickSeconds
}

// Attach adds a node to the medium at the given position, with the given
// local clock offset and oscillator skew (parts per million).
func (a *AirLink) Attach(id types.NodeId, pos Position, clockOffset Ticks, skewPpm float64) *AirTransport {
	t := &AirTransport{
		link:   a,
		id:     id,
		pos:    pos,
		rate:   1.0 + skewPpm*1e-6,
		offset: clockOffset,
		rx:     make(chan rxFrame, 64),
		closed: make(chan struct{}),
	}
	a.mu.Lock()
	a.ports[id] = t
	a.mu.Unlock()
	return t
}

// SetCapture routes a copy of all traffic to c, for offline dissection.
func (a *AirLink) SetCapture(c FrameCapture) {
	a.mu.Lock()
	a.capture = c
	a.mu.Unlock()
}

// MoveNode relocates an attached node; subsequent frames see the new
// propagation geometry.
func (a *AirLink) MoveNode(id types.NodeId, pos Position) {
	a.mu.Lock()
	if t, ok := a.ports[id]; ok {
		t.pos = pos
	}
	a.mu.Unlock()
}

// broadcast delivers the frame to every other attached node. sendBase is the
// medium-clock instant of the transmission.
func (a *AirLink) broadcast(src *AirTransport, f *Frame, sendBase float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture != nil {
		us := uint64(sendBase * a.cfg.TickSeconds * 1e6)
		if err := a.capture.AppendFrame(us, f.Serialize()); err != nil {
			logger.Warnf("air link capture failed: %v", err)
		}
	}

	for id, dst := range a.ports {
		if id == src.id {
			continue
		}
		if prng.FrameLost(a.cfg.LossProbability) {
			continue
		}
		propTicks := src.pos.DistanceTo(dst.pos) / SpeedOfLight / a.cfg.TickSeconds
		at := dst.localTicksAt(sendBase + propTicks)
		if noise := prng.TimingNoise(a.cfg.NoiseMaxTicks); noise != 0 {
			at = Ticks(int64(at) + noise)
		}
		select {
		case dst.rx <- rxFrame{frame: f.Copy(), at: at}:
		default:
			// Receiver queue full: the frame is lost, as it would be on air.
		}
	}
}

type rxFrame struct {
	frame *Frame
	at    Ticks
}

// AirTransport is one node's port on an AirLink.
type AirTransport struct {
	link   *AirLink
	id     types.NodeId
	pos    Position
	rate   float64
	offset Ticks
	rx     chan rxFrame
	closed chan struct{}
}

var _ Transport = (*AirTransport)(nil)

// localTicksAt converts a medium-clock instant to this node's local clock.
func (t *AirTransport) localTicksAt(base float64) Ticks {
	return Ticks(base*t.rate) + t.offset
}

// baseAt converts a local clock value back to the medium clock.
func (t *AirTransport) baseAt(local Ticks) float64 {
	return float64(local-t.offset) / t.rate
}

func (t *AirTransport) Now() Ticks {
	return t.localTicksAt(t.link.baseTicks())
}

func (t *AirTransport) TickSeconds() float64 {
	return t.link.cfg.TickSeconds
}

func (t *AirTransport) Transmit(f *Frame) (Ticks, error) {
	select {
	case <-t.closed:
		return 0, errors.New("air transport closed")
	default:
	}
	sendBase := t.link.baseTicks()
	t.link.broadcast(t, f, sendBase)
	return t.localTicksAt(sendBase), nil
}

// TransmitAt waits for the local clock to reach at, then transmits. The
// frame's on-air departure instant is the scheduled one, so the returned TX
// timestamp is exact regardless of scheduler wake-up latency, matching the
// delayed-send behavior of a real UWB chip.
func (t *AirTransport) TransmitAt(f *Frame, at Ticks) (Ticks, error) {
	select {
	case <-t.closed:
		return 0, errors.New("air transport closed")
	default:
	}
	if now := t.Now(); at > now {
		wait := float64(at-now) * t.link.cfg.TickSeconds / t.rate
		time.Sleep(time.Duration(wait * float64(time.Second)))
	}
	t.link.broadcast(t, f, t.baseAt(at))
	return at, nil
}

func (t *AirTransport) Receive(timeout time.Duration) (*Frame, Ticks, error) {
	select {
	case rxf := <-t.rx:
		return rxf.frame, rxf.at, nil
	case <-time.After(timeout):
		return nil, 0, ErrRxTimeout
	case <-t.closed:
		return nil, 0, errors.New("air transport closed")
	}
}

// Close detaches the node from the medium.
func (t *AirTransport) Close() {
	t.link.mu.Lock()
	delete(t.link.ports, t.id)
	t.link.mu.Unlock()
	close(t.closed)
}
