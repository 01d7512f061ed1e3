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

// Package schedule divides time into TDMA cycles so that at most one node of
// a roster initiates ranging at any instant. Each node owns one slot per
// cycle, ordered by its rank in the roster; outside its slot a node listens
// and serves exchanges initiated by the current slot owner.
package schedule

import (
	"time"

	"github.com/simonlingoogle/go-simplelogger"

	"github.com/uwbprox/rangenet/types"
)

// Scheduler maps wall-clock time onto the TDMA cycle of a fixed roster. Slots
// are anchored to the Unix epoch, so nodes with synchronized wall clocks and
// the same roster agree on slot ownership without any coordination traffic.
//
// A Scheduler is not safe for concurrent use; the session loop is its only
// caller.
type Scheduler struct {
	roster       types.Roster
	self         types.NodeId
	rank         int
	slotDuration time.Duration

	peers   []types.NodeId
	peerIdx int
	nowFunc func() time.Time
	epoch   time.Time
}

// NewScheduler builds the schedule for self within roster. The roster must
// contain self and have already been validated.
func NewScheduler(roster types.Roster, self types.NodeId, slotDuration time.Duration) *Scheduler {
	rank := roster.RankOf(self)
	simplelogger.AssertTrue(rank >= 0, "node %s not in roster %s", self, roster)
	simplelogger.AssertTrue(slotDuration > 0, "non-positive slot duration")

	return &Scheduler{
		roster:       roster,
		self:         self,
		rank:         rank,
		slotDuration: slotDuration,
		peers:        roster.Peers(self),
		nowFunc:      time.Now,
		epoch:        time.Unix(0, 0),
	}
}

// CycleLength is the period after which the slot pattern repeats.
func (s *Scheduler) CycleLength() time.Duration {
	return s.slotDuration * time.Duration(len(s.roster))
}

// cycleOffset is the position of t within the current cycle.
func (s *Scheduler) cycleOffset(t time.Time) time.Duration {
	return t.Sub(s.epoch) % s.CycleLength()
}

// CycleIndex counts completed cycles since the epoch. Peer-loss bookkeeping
// resets when it advances.
func (s *Scheduler) CycleIndex() uint64 {
	return uint64(s.nowFunc().Sub(s.epoch) / s.CycleLength())
}

// SlotOwner returns the node whose slot covers the current instant.
func (s *Scheduler) SlotOwner() types.NodeId {
	slot := int(s.cycleOffset(s.nowFunc()) / s.slotDuration)
	return s.roster[slot]
}

// IsOwnSlot reports whether this node may initiate right now.
func (s *Scheduler) IsOwnSlot() bool {
	return s.SlotOwner() == s.self
}

// SlotRemaining is the time left in the current slot, whoever owns it.
func (s *Scheduler) SlotRemaining() time.Duration {
	off := s.cycleOffset(s.nowFunc())
	return s.slotDuration - off%s.slotDuration
}

// CurrentPeer is the peer the next ranging attempt targets. Peers rotate
// round-robin across attempts, so over time every pair is measured.
func (s *Scheduler) CurrentPeer() types.NodeId {
	simplelogger.AssertTrue(len(s.peers) > 0, "roster has no peers for %s", s.self)
	return s.peers[s.peerIdx]
}

// AdvancePeer moves to the next peer after a completed attempt, successful
// or not.
func (s *Scheduler) AdvancePeer() {
	s.peerIdx = (s.peerIdx + 1) % len(s.peers)
}

// Roster returns the full ordered roster the schedule is derived from.
func (s *Scheduler) Roster() types.Roster {
	return s.roster
}

// Self returns this node's id.
func (s *Scheduler) Self() types.NodeId {
	return s.self
}

// Rank returns this node's zero-based position in the roster.
func (s *Scheduler) Rank() int {
	return s.rank
}
