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

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uwbprox/rangenet/types"
)

func fixedClock(s *Scheduler, t time.Time) {
	s.nowFunc = func() time.Time { return t }
}

func TestSlotOwnershipIsExclusive(t *testing.T) {
	roster := types.Roster{'A', 'B', 'C'}
	slot := 200 * time.Millisecond

	sa := NewScheduler(roster, 'A', slot)
	sb := NewScheduler(roster, 'B', slot)
	sc := NewScheduler(roster, 'C', slot)
	all := []*Scheduler{sa, sb, sc}

	// Sample the whole 600 ms cycle: at every instant exactly one node owns
	// the slot and all three agree on who it is.
	base := time.Unix(1000, 0)
	for off := time.Duration(0); off < 600*time.Millisecond; off += 10 * time.Millisecond {
		now := base.Add(off)
		for _, s := range all {
			fixedClock(s, now)
		}
		owner := sa.SlotOwner()
		assert.Equal(t, owner, sb.SlotOwner())
		assert.Equal(t, owner, sc.SlotOwner())

		owners := 0
		for _, s := range all {
			if s.IsOwnSlot() {
				owners++
			}
		}
		assert.Equal(t, 1, owners, "at offset %v", off)
	}
}

func TestSlotOrderFollowsRosterRank(t *testing.T) {
	roster := types.Roster{'A', 'B', 'C'}
	slot := 200 * time.Millisecond
	s := NewScheduler(roster, 'A', slot)

	base := time.Unix(2000, 0) // cycle boundary: 2000 s is a multiple of 600 ms
	for i, want := range roster {
		fixedClock(s, base.Add(time.Duration(i)*slot+50*time.Millisecond))
		assert.Equal(t, want, s.SlotOwner())
	}
}

func TestSlotPatternRecurs(t *testing.T) {
	roster := types.Roster{'A', 'B', 'C'}
	slot := 200 * time.Millisecond
	s := NewScheduler(roster, 'B', slot)

	base := time.Unix(3000, 0)
	fixedClock(s, base.Add(250*time.Millisecond))
	first := s.SlotOwner()
	fixedClock(s, base.Add(850*time.Millisecond)) // one full cycle later
	assert.Equal(t, first, s.SlotOwner())
}

func TestCycleLengthAndIndex(t *testing.T) {
	roster := types.Roster{'A', 'B', 'C', 'D'}
	s := NewScheduler(roster, 'D', 150*time.Millisecond)
	assert.Equal(t, 600*time.Millisecond, s.CycleLength())

	base := time.Unix(4000, 0)
	fixedClock(s, base)
	idx := s.CycleIndex()
	fixedClock(s, base.Add(599*time.Millisecond))
	assert.Equal(t, idx, s.CycleIndex())
	fixedClock(s, base.Add(601*time.Millisecond))
	assert.Equal(t, idx+1, s.CycleIndex())
}

func TestSlotRemaining(t *testing.T) {
	roster := types.Roster{'A', 'B'}
	s := NewScheduler(roster, 'A', 200*time.Millisecond)

	fixedClock(s, time.Unix(5000, 0).Add(50*time.Millisecond))
	assert.Equal(t, 150*time.Millisecond, s.SlotRemaining())
}

func TestPeerRotationSkipsSelf(t *testing.T) {
	roster := types.Roster{'A', 'B', 'C', 'D'}
	s := NewScheduler(roster, 'B', 200*time.Millisecond)

	var seen []types.NodeId
	for i := 0; i < 6; i++ {
		seen = append(seen, s.CurrentPeer())
		s.AdvancePeer()
	}
	assert.Equal(t, []types.NodeId{'A', 'C', 'D', 'A', 'C', 'D'}, seen)
}

func TestTwoNodeRoster(t *testing.T) {
	roster := types.Roster{'A', 'B'}
	s := NewScheduler(roster, 'A', 200*time.Millisecond)

	assert.Equal(t, types.NodeId('B'), s.CurrentPeer())
	s.AdvancePeer()
	assert.Equal(t, types.NodeId('B'), s.CurrentPeer())
	assert.Equal(t, 0, s.Rank())
}
