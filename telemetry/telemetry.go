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

// Package telemetry publishes ranging results and liveness signals to a hub
// as JSON datagrams over UDP. Delivery is best effort: a lost datagram costs
// one observation, never a retransmission, and never stalls the ranging loop.
package telemetry

import (
	"encoding/json"
	"math"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/types"
)

// Sender is the hub-facing side of a ranging node. Implementations must not
// block beyond a single datagram write.
type Sender interface {
	SendResult(r *types.RangingResult) error
	SendHeartbeat() error
	SendStatus(msg string) error
	Close() error
}

// DistancePacket is one measured range between a pair of nodes.
type DistancePacket struct {
	Node     string  `json:"node"`
	Peer     string  `json:"peer"`
	Distance float64 `json:"distance"`
	Quality  float64 `json:"quality"`
	Ts       int64   `json:"ts"`
}

// EventPacket is a non-distance datagram: a heartbeat or a status message.
type EventPacket struct {
	Node string `json:"node"`
	Type string `json:"type"`
	Msg  string `json:"msg,omitempty"`
	Ts   int64  `json:"ts"`
}

const (
	EventHeartbeat = "heartbeat"
	EventStatus    = "status"
)

// UDPSender sends telemetry to a single hub address over a connected UDP
// socket. Safe for use from one goroutine, which is how the session loop
// drives it.
type UDPSender struct {
	node types.NodeId
	conn *net.UDPConn
}

// NewUDPSender resolves addr ("host:port") and connects the socket. The
// connect is local bookkeeping only; the hub need not be up.
func NewUDPSender(node types.NodeId, addr string) (*UDPSender, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve telemetry address %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, ua)
	if err != nil {
		return nil, errors.Wrapf(err, "dial telemetry address %s", addr)
	}
	return &UDPSender{node: node, conn: conn}, nil
}

func (s *UDPSender) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal telemetry packet")
	}
	if _, err := s.conn.Write(data); err != nil {
		return errors.Wrap(err, "send telemetry packet")
	}
	return nil
}

// SendResult publishes one ranging result. The distance is rounded to
// centimeters, matching what the hub stores.
func (s *UDPSender) SendResult(r *types.RangingResult) error {
	return s.send(&DistancePacket{
		Node:     r.SourceId.String(),
		Peer:     r.PeerId.String(),
		Distance: math.Round(r.Distance*100) / 100,
		Quality:  r.Quality,
		Ts:       r.Timestamp,
	})
}

func (s *UDPSender) SendHeartbeat() error {
	return s.send(&EventPacket{
		Node: s.node.String(),
		Type: EventHeartbeat,
		Ts:   time.Now().Unix(),
	})
}

func (s *UDPSender) SendStatus(msg string) error {
	return s.send(&EventPacket{
		Node: s.node.String(),
		Type: EventStatus,
		Msg:  msg,
		Ts:   time.Now().Unix(),
	})
}

func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// NopSender discards all telemetry. Used when no hub address is configured.
type NopSender struct{}

func (NopSender) SendResult(*types.RangingResult) error { return nil }
func (NopSender) SendHeartbeat() error                  { return nil }
func (NopSender) SendStatus(string) error               { return nil }
func (NopSender) Close() error                          { return nil }
