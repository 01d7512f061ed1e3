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

package telemetry

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uwbprox/rangenet/types"
)

// hubListener is a throwaway UDP socket that captures whatever a sender
// emits during a test.
type hubListener struct {
	conn *net.UDPConn
}

func newHubListener(t *testing.T) *hubListener {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.NoError(t, err)
	return &hubListener{conn: conn}
}

func (h *hubListener) addr() string {
	return h.conn.LocalAddr().String()
}

func (h *hubListener) readPacket(t *testing.T) []byte {
	_ = h.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := h.conn.ReadFromUDP(buf)
	assert.NoError(t, err)
	return buf[:n]
}

func TestSendResult(t *testing.T) {
	hub := newHubListener(t)
	defer hub.conn.Close()

	s, err := NewUDPSender('A', hub.addr())
	assert.NoError(t, err)
	defer s.Close()

	err = s.SendResult(&types.RangingResult{
		SourceId:  'A',
		PeerId:    'B',
		Distance:  2.34567,
		Quality:   0.9,
		Timestamp: 1700000000,
	})
	assert.NoError(t, err)

	var pkt DistancePacket
	assert.NoError(t, json.Unmarshal(hub.readPacket(t), &pkt))
	assert.Equal(t, "A", pkt.Node)
	assert.Equal(t, "B", pkt.Peer)
	assert.Equal(t, 2.35, pkt.Distance) // centimeter rounding
	assert.Equal(t, 0.9, pkt.Quality)
	assert.Equal(t, int64(1700000000), pkt.Ts)
}

func TestSendHeartbeatAndStatus(t *testing.T) {
	hub := newHubListener(t)
	defer hub.conn.Close()

	s, err := NewUDPSender('C', hub.addr())
	assert.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.SendHeartbeat())
	var hb EventPacket
	assert.NoError(t, json.Unmarshal(hub.readPacket(t), &hb))
	assert.Equal(t, "C", hb.Node)
	assert.Equal(t, EventHeartbeat, hb.Type)
	assert.Empty(t, hb.Msg)
	assert.NotZero(t, hb.Ts)

	assert.NoError(t, s.SendStatus("ranging started"))
	var st EventPacket
	assert.NoError(t, json.Unmarshal(hub.readPacket(t), &st))
	assert.Equal(t, "C", st.Node)
	assert.Equal(t, EventStatus, st.Type)
	assert.Equal(t, "ranging started", st.Msg)
}

func TestNopSender(t *testing.T) {
	var s Sender = NopSender{}
	assert.NoError(t, s.SendResult(&types.RangingResult{}))
	assert.NoError(t, s.SendHeartbeat())
	assert.NoError(t, s.SendStatus("x"))
	assert.NoError(t, s.Close())
}
