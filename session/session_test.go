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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/types"
)

// recordingSender captures published telemetry in memory.
type recordingSender struct {
	mu      sync.Mutex
	results []*types.RangingResult
	beats   int
}

func (r *recordingSender) SendResult(res *types.RangingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.results = append(r.results, &cp)
	return nil
}

func (r *recordingSender) SendHeartbeat() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beats++
	return nil
}

func (r *recordingSender) SendStatus(string) error { return nil }
func (r *recordingSender) Close() error            { return nil }

func (r *recordingSender) snapshot() []*types.RangingResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*types.RangingResult, len(r.results))
	copy(out, r.results)
	return out
}

func fastConfig(node types.NodeId) Config {
	cfg := DefaultConfig()
	cfg.Node = node
	cfg.Roster = types.Roster{'A', 'B'}
	cfg.SlotDuration = Duration(100 * time.Millisecond)
	cfg.RangingTimeout = Duration(30 * time.Millisecond)
	cfg.ListenTimeout = Duration(10 * time.Millisecond)
	return cfg
}

func TestTwoNodeSessionOverAirLink(t *testing.T) {
	link := radio.NewAirLink(radio.DefaultAirLinkConfig())
	trA := link.Attach('A', radio.Position{X: 0, Y: 0}, 555555, +5)
	trB := link.Attach('B', radio.Position{X: 3, Y: 4}, 777777777, -5)

	telA := &recordingSender{}
	telB := &recordingSender{}
	oa := NewOrchestrator(fastConfig('A'), trA, telA)
	ob := NewOrchestrator(fastConfig('B'), trB, telB)

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()
	var wg sync.WaitGroup
	for _, o := range []*Orchestrator{oa, ob} {
		wg.Add(1)
		go func(o *Orchestrator) {
			defer wg.Done()
			_ = o.Run(ctx)
		}(o)
	}
	wg.Wait()

	// 700 ms spans at least three full 200 ms cycles, so both nodes owned
	// slots and both directions were measured.
	for name, tel := range map[string]*recordingSender{"A": telA, "B": telB} {
		rs := tel.snapshot()
		assert.NotEmpty(t, rs, "node %s published nothing", name)
		for _, r := range rs {
			assert.InDelta(t, 5.0, r.Distance, 0.05)
			assert.Equal(t, 0.9, r.Quality)
		}
	}

	ca, cb := oa.Counters(), ob.Counters()
	assert.NotZero(t, ca.Successes)
	assert.NotZero(t, cb.Successes)
	assert.NotZero(t, ca.Served)
	assert.NotZero(t, cb.Served)
}

func TestSyntheticFallbackOnLonelyNode(t *testing.T) {
	cfg := fastConfig('A')
	cfg.Synthetic.Enabled = true
	tel := &recordingSender{}
	o := NewOrchestrator(cfg, radio.NewSimTransport(), tel)

	// Nobody answers on a SimTransport: every attempt times out and the
	// synthetic generator substitutes a bounded distance.
	for i := 0; i < cfg.MaxRetries; i++ {
		o.initiateOnce()
	}

	rs := tel.snapshot()
	assert.Len(t, rs, cfg.MaxRetries)
	for _, r := range rs {
		assert.Equal(t, types.NodeId('A'), r.SourceId)
		assert.Equal(t, types.NodeId('B'), r.PeerId)
		assert.GreaterOrEqual(t, r.Distance, 0.1)
		assert.LessOrEqual(t, r.Distance, cfg.Synthetic.BaseM+cfg.Synthetic.AmplitudeM)
		assert.Equal(t, 0.95, r.Quality)
	}

	c := o.Counters()
	assert.Equal(t, uint64(cfg.MaxRetries), c.Attempts)
	assert.Equal(t, uint64(cfg.MaxRetries), c.Timeouts)
	assert.Zero(t, c.Successes)
}

func TestPeerLostAfterRetryBudget(t *testing.T) {
	cfg := fastConfig('A')
	tel := &recordingSender{}
	o := NewOrchestrator(cfg, radio.NewSimTransport(), tel)

	for i := 0; i < cfg.MaxRetries; i++ {
		o.initiateOnce()
	}
	assert.True(t, o.lost['B'])

	// Further turns skip the lost peer without new attempts.
	before := o.Counters().Attempts
	o.initiateOnce()
	assert.Equal(t, before, o.Counters().Attempts)
}

func TestLowQualityResultsDiscarded(t *testing.T) {
	cfg := fastConfig('A')
	tel := &recordingSender{}
	o := NewOrchestrator(cfg, radio.NewSimTransport(), tel)

	o.publish(&types.RangingResult{SourceId: 'A', PeerId: 'B', Distance: 3, Quality: 0.3})
	o.publish(&types.RangingResult{SourceId: 'A', PeerId: 'B', Distance: 3, Quality: 0.9})

	assert.Len(t, tel.snapshot(), 1)
	c := o.Counters()
	assert.Equal(t, uint64(1), c.Discarded)
	assert.Equal(t, uint64(1), c.Sent)
}
