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

// Package hub collects telemetry datagrams from ranging nodes and keeps a
// live view of the deployment: the latest distance per node pair and the
// last time each node was heard from.
package hub

import (
	"context"
	"encoding/json"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/telemetry"
	"github.com/uwbprox/rangenet/types"
)

// PairKey orders a node pair canonically so A->B and B->A hit the same row.
type PairKey struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

func pairKeyOf(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

func (k PairKey) String() string {
	return k.Low + "-" + k.High
}

// PairEntry is the latest accepted measurement of one node pair.
type PairEntry struct {
	Distance   float64   `json:"distance"`
	Quality    float64   `json:"quality"`
	ReportedBy string    `json:"reported_by"`
	Ts         int64     `json:"ts"`
	ReceivedAt time.Time `json:"received_at"`
}

// Stats counts what the collector has seen since start.
type Stats struct {
	Packets    uint64 `json:"packets"`
	Distances  uint64 `json:"distances"`
	Heartbeats uint64 `json:"heartbeats"`
	Statuses   uint64 `json:"statuses"`
	Malformed  uint64 `json:"malformed"`
	Duplicates uint64 `json:"duplicates"`
}

// Collector ingests telemetry datagrams and aggregates them. All methods are
// safe for concurrent use; the HTTP API reads while the UDP loop writes.
type Collector struct {
	staleAfter time.Duration

	mu       sync.Mutex
	pairs    map[PairKey]PairEntry
	lastSeen map[string]time.Time
	stats    Stats
}

// NewCollector builds a collector. Pairs unheard of for staleAfter drop out
// of snapshots but stay countable in stats.
func NewCollector(staleAfter time.Duration) *Collector {
	return &Collector{
		staleAfter: staleAfter,
		pairs:      map[PairKey]PairEntry{},
		lastSeen:   map[string]time.Time{},
	}
}

// rawPacket is the superset of all datagram shapes nodes send.
type rawPacket struct {
	Node     string   `json:"node"`
	Type     string   `json:"type"`
	Peer     string   `json:"peer"`
	Distance *float64 `json:"distance"`
	Quality  float64  `json:"quality"`
	Msg      string   `json:"msg"`
	Ts       int64    `json:"ts"`
}

// Ingest validates and applies one datagram. Malformed packets are counted
// and dropped; a distance identical to the stored one (same reporter, same
// source timestamp) is a duplicate and does not refresh the pair.
func (c *Collector) Ingest(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Packets++

	var p rawPacket
	if err := json.Unmarshal(data, &p); err != nil {
		c.stats.Malformed++
		return errors.Wrap(err, "malformed telemetry packet")
	}
	if _, err := types.ParseNodeId(p.Node); err != nil {
		c.stats.Malformed++
		return errors.Wrapf(err, "telemetry packet from unknown node %q", p.Node)
	}
	now := time.Now()
	c.lastSeen[p.Node] = now

	switch p.Type {
	case telemetry.EventHeartbeat:
		c.stats.Heartbeats++
		return nil
	case telemetry.EventStatus:
		c.stats.Statuses++
		logger.Infof("hub: node %s status: %s", p.Node, p.Msg)
		return nil
	case "":
		// distance packet, validated below
	default:
		c.stats.Malformed++
		return errors.Errorf("telemetry packet of unknown type %q from %s", p.Type, p.Node)
	}

	if _, err := types.ParseNodeId(p.Peer); err != nil {
		c.stats.Malformed++
		return errors.Wrapf(err, "distance packet from %s with bad peer %q", p.Node, p.Peer)
	}
	if p.Distance == nil || *p.Distance < 0 || p.Quality < 0 || p.Quality > 1 {
		c.stats.Malformed++
		return errors.Errorf("distance packet from %s out of range", p.Node)
	}

	key := pairKeyOf(p.Node, p.Peer)
	if prev, ok := c.pairs[key]; ok && prev.ReportedBy == p.Node && prev.Ts == p.Ts &&
		prev.Distance == *p.Distance {
		c.stats.Duplicates++
		return nil
	}
	c.pairs[key] = PairEntry{
		Distance:   *p.Distance,
		Quality:    p.Quality,
		ReportedBy: p.Node,
		Ts:         p.Ts,
		ReceivedAt: now,
	}
	c.stats.Distances++
	logger.Debugf("hub: %s = %.2f m (Q=%.2f, by %s)", key, *p.Distance, p.Quality, p.Node)
	return nil
}

// PairSnapshot is one row of the live distance matrix.
type PairSnapshot struct {
	Pair PairKey `json:"pair"`
	PairEntry
	AgeSeconds float64 `json:"age_seconds"`
}

// NodeSnapshot is the liveness row of one node.
type NodeSnapshot struct {
	Node       string  `json:"node"`
	AgeSeconds float64 `json:"age_seconds"`
	Alive      bool    `json:"alive"`
}

// Snapshot returns the non-stale pairs and all known nodes, both in stable
// order.
func (c *Collector) Snapshot() ([]PairSnapshot, []NodeSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()

	var pairs []PairSnapshot
	for key, e := range c.pairs {
		age := now.Sub(e.ReceivedAt)
		if age > c.staleAfter {
			continue
		}
		pairs = append(pairs, PairSnapshot{Pair: key, PairEntry: e, AgeSeconds: age.Seconds()})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Pair.String() < pairs[j].Pair.String()
	})

	var nodes []NodeSnapshot
	for node, seen := range c.lastSeen {
		age := now.Sub(seen)
		nodes = append(nodes, NodeSnapshot{
			Node:       node,
			AgeSeconds: age.Seconds(),
			Alive:      age <= c.staleAfter,
		})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Node < nodes[j].Node })
	return pairs, nodes
}

// Stats returns a copy of the counters.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Serve reads datagrams from conn and ingests them until ctx is canceled or
// the socket is closed. The caller owns the socket; closing it unblocks the
// read loop.
func (c *Collector) Serve(ctx context.Context, conn *net.UDPConn) error {
	go func() {
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	buf := make([]byte, 2048)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "telemetry socket read")
		}
		if err := c.Ingest(buf[:n]); err != nil {
			logger.Warnf("hub: dropped packet from %s: %v", from, err)
		}
	}
}
