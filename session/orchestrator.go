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

package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/schedule"
	"github.com/uwbprox/rangenet/telemetry"
	"github.com/uwbprox/rangenet/twr"
	"github.com/uwbprox/rangenet/types"
)

// Orchestrator drives the ranging life of one node. A single goroutine runs
// the loop; the per-step receive timeout is its only suspension point, and
// shutdown is observed between protocol steps, never inside one.
type Orchestrator struct {
	cfg   Config
	ep    *twr.Endpoint
	sched *schedule.Scheduler
	tel   telemetry.Sender

	// stateMu guards only the fields the console reads from its own
	// goroutine. The ranging loop holds it briefly per update.
	stateMu  sync.Mutex
	counters Counters

	retries   map[types.NodeId]int
	lost      map[types.NodeId]bool
	lastCycle uint64

	lastHeartbeat time.Time
	lastStats     time.Time
	startTime     time.Time
}

func NewOrchestrator(cfg Config, tr radio.Transport, tel telemetry.Sender) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		ep:      twr.NewEndpoint(cfg.Node, tr, cfg.TwrConfig()),
		sched:   schedule.NewScheduler(cfg.Roster, cfg.Node, cfg.SlotDuration.D()),
		tel:     tel,
		retries: map[types.NodeId]int{},
		lost:    map[types.NodeId]bool{},
	}
}

// Run drives the loop until ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startTime = time.Now()
	o.lastHeartbeat = o.startTime
	o.lastStats = o.startTime
	o.lastCycle = o.sched.CycleIndex()

	if err := o.tel.SendStatus("ranging session started"); err != nil {
		logger.Warnf("session %s: status send failed: %v", o.cfg.Node, err)
	}
	logger.Infof("session %s: roster=%s slot=%v rank=%d",
		o.cfg.Node, o.sched.Roster(), o.cfg.SlotDuration, o.sched.Rank())

	for {
		select {
		case <-ctx.Done():
			if err := o.tel.SendStatus("ranging session stopped"); err != nil {
				logger.Debugf("session %s: status send failed: %v", o.cfg.Node, err)
			}
			logger.Infof("session %s: stopped, %s", o.cfg.Node, o.Counters())
			return ctx.Err()
		default:
		}
		o.Step()
	}
}

// Step executes one unit of the loop: housekeeping, then either one ranging
// attempt (own slot) or one bounded listen window (someone else's slot).
func (o *Orchestrator) Step() {
	o.housekeeping()

	if cycle := o.sched.CycleIndex(); cycle != o.lastCycle {
		// A fresh cycle forgives lost peers and resets retry budgets.
		o.lastCycle = cycle
		o.retries = map[types.NodeId]int{}
		o.lost = map[types.NodeId]bool{}
	}

	if !o.sched.IsOwnSlot() {
		o.serveOnce()
		return
	}
	o.initiateOnce()
}

// serveOnce listens one bounded window and serves an exchange if a peer
// polls us. The window never outlives the foreign slot by much, so the loop
// re-checks slot ownership at least once per ListenTimeout.
func (o *Orchestrator) serveOnce() {
	ex, err := o.ep.Respond(o.cfg.ListenTimeout.D())
	if err != nil {
		logger.Debugf("session %s: responder exchange failed: %v", o.cfg.Node, err)
		return
	}
	if ex != nil {
		o.stateMu.Lock()
		o.counters.Served++
		o.stateMu.Unlock()
	}
}

func (o *Orchestrator) initiateOnce() {
	peer := o.sched.CurrentPeer()
	if o.lost[peer] {
		o.sched.AdvancePeer()
		// All peers may be lost this cycle; keep the loop from spinning.
		time.Sleep(time.Millisecond)
		return
	}

	result, _, err := o.ep.Initiate(peer)

	o.stateMu.Lock()
	o.counters.Attempts++
	if err != nil {
		o.counters.Failures++
		switch {
		case errors.Is(err, types.ErrResponseTimeout):
			o.counters.Timeouts++
		case errors.Is(err, types.ErrProtocolViolation):
			o.counters.Violations++
		}
	} else {
		o.counters.Successes++
	}
	o.stateMu.Unlock()

	if err != nil {
		o.retries[peer]++
		if o.retries[peer] >= o.cfg.MaxRetries {
			o.lost[peer] = true
			logger.Warnf("session %s: peer %s lost after %d attempts this cycle: %v",
				o.cfg.Node, peer, o.retries[peer], err)
		} else {
			logger.Debugf("session %s: attempt %d to %s failed: %v",
				o.cfg.Node, o.retries[peer], peer, err)
		}
		if o.cfg.Synthetic.Enabled {
			o.publish(o.syntheticResult(peer))
		}
	} else {
		o.retries[peer] = 0
		o.publish(result)
	}
	o.sched.AdvancePeer()
}

// publish applies the quality filter and hands the result to telemetry.
func (o *Orchestrator) publish(r *types.RangingResult) {
	if r.Quality < o.cfg.QualityThreshold {
		o.stateMu.Lock()
		o.counters.Discarded++
		o.stateMu.Unlock()
		logger.Debugf("session %s: discarding low quality range to %s: %.2f m (Q=%.2f)",
			o.cfg.Node, r.PeerId, r.Distance, r.Quality)
		return
	}
	if err := o.tel.SendResult(r); err != nil {
		o.stateMu.Lock()
		o.counters.SendFailures++
		o.stateMu.Unlock()
		logger.Debugf("session %s: telemetry send failed: %v", o.cfg.Node, err)
		return
	}
	o.stateMu.Lock()
	o.counters.Sent++
	o.stateMu.Unlock()
}

// syntheticResult substitutes a plausible bounded distance when no real
// measurement is available: a slow sinusoid of wall time, phase shifted per
// peer so pairs are distinguishable on the hub.
func (o *Orchestrator) syntheticResult(peer types.NodeId) *types.RangingResult {
	s := o.cfg.Synthetic
	t := float64(time.Now().UnixNano()) / 1e9
	phase := 2 * math.Pi * float64(peer-'A') / 7.0
	d := s.BaseM + s.AmplitudeM*math.Sin(2*math.Pi*t/s.Period.D().Seconds()+phase)
	if d < 0.1 {
		d = 0.1
	}
	return &types.RangingResult{
		SourceId:  o.cfg.Node,
		PeerId:    peer,
		Distance:  d,
		Quality:   s.Quality,
		Timestamp: time.Now().Unix(),
	}
}

// housekeeping emits the periodic heartbeat and stats report.
func (o *Orchestrator) housekeeping() {
	now := time.Now()
	if now.Sub(o.lastHeartbeat) >= o.cfg.HeartbeatInterval.D() {
		o.lastHeartbeat = now
		if err := o.tel.SendHeartbeat(); err != nil {
			logger.Debugf("session %s: heartbeat send failed: %v", o.cfg.Node, err)
		}
	}
	if now.Sub(o.lastStats) >= o.cfg.StatsInterval.D() {
		o.lastStats = now
		logger.Infof("session %s: %s", o.cfg.Node, o.Counters())
	}
}

// Counters returns a snapshot safe to read from other goroutines.
func (o *Orchestrator) Counters() Counters {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.counters
}

// Node returns this node's id.
func (o *Orchestrator) Node() types.NodeId {
	return o.cfg.Node
}

// Scheduler exposes the schedule for read-only inspection by the console.
func (o *Orchestrator) Scheduler() *schedule.Scheduler {
	return o.sched
}

// Uptime is the time since Run started.
func (o *Orchestrator) Uptime() time.Duration {
	return time.Since(o.startTime)
}
