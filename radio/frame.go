// Copyright (c) 2025-2026, The RangeNet Authors.
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
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/types"
)

const (
	// PanId identifies the deployment's radio network; all units share it.
	PanId uint16 = 0xDECA

	// MaxPayloadSize is the opaque payload budget per frame.
	MaxPayloadSize = 32

	frameHeaderLen = 10

	// IEEE 802.15.4 style frame control: data frame, short addressing.
	frameCtrl0 = 0x41
	frameCtrl1 = 0x88
)

// Frame is one message on the ranging channel.
type Frame struct {
	Seq     uint8
	Src     types.NodeId
	Dst     types.NodeId
	Type    types.MsgType
	Payload []byte
}

// Serialize encodes the frame to its on-air byte layout:
// frame control (2), sequence (1), PAN id (2), destination (2), source (2),
// message type (1), payload (0..32). Multi-byte fields are little-endian.
func (f *Frame) Serialize() []byte {
	logAssertPayload(len(f.Payload))
	msg := make([]byte, frameHeaderLen+len(f.Payload))
	msg[0] = frameCtrl0
	msg[1] = frameCtrl1
	msg[2] = f.Seq
	binary.LittleEndian.PutUint16(msg[3:5], PanId)
	binary.LittleEndian.PutUint16(msg[5:7], uint16(f.Dst))
	binary.LittleEndian.PutUint16(msg[7:9], uint16(f.Src))
	msg[9] = uint8(f.Type)
	copy(msg[frameHeaderLen:], f.Payload)
	return msg
}

// Deserialize decodes one on-air frame into f. A malformed buffer yields an
// error and leaves f unspecified; a transport must never surface such a
// buffer as a received frame.
func (f *Frame) Deserialize(data []byte) error {
	if len(data) < frameHeaderLen {
		return errors.Errorf("frame too short: %d bytes", len(data))
	}
	if data[0] != frameCtrl0 || data[1] != frameCtrl1 {
		return errors.Errorf("unexpected frame control 0x%02x%02x", data[0], data[1])
	}
	if pan := binary.LittleEndian.Uint16(data[3:5]); pan != PanId {
		return errors.Errorf("foreign PAN id 0x%04x", pan)
	}
	if len(data) > frameHeaderLen+MaxPayloadSize {
		return errors.Errorf("frame payload exceeds %d bytes", MaxPayloadSize)
	}
	f.Seq = data[2]
	f.Dst = types.NodeId(binary.LittleEndian.Uint16(data[5:7]))
	f.Src = types.NodeId(binary.LittleEndian.Uint16(data[7:9]))
	f.Type = types.MsgType(data[9])
	if !f.Type.Valid() {
		return errors.Errorf("unknown message type 0x%02x", data[9])
	}
	f.Payload = make([]byte, len(data)-frameHeaderLen)
	copy(f.Payload, data[frameHeaderLen:])
	return nil
}

// Copy creates a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	cp := *f
	cp.Payload = make([]byte, len(f.Payload))
	copy(cp.Payload, f.Payload)
	return &cp
}

func (f *Frame) String() string {
	paylStr := ""
	if len(f.Payload) > 0 {
		paylStr = fmt.Sprintf(",payl=%s", hex.EncodeToString(f.Payload))
	}
	return fmt.Sprintf("Frame{%s,%s->%s,seq=%d%s}", f.Type, f.Src, f.Dst, f.Seq, paylStr)
}

func logAssertPayload(n int) {
	if n > MaxPayloadSize {
		panic(fmt.Sprintf("frame payload %d exceeds maximum %d", n, MaxPayloadSize))
	}
}
