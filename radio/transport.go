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

// Package radio defines the hardware-facing boundary of the ranging
// coordinator: framed transmit/receive with bounded timeouts, plus the
// device-local tick clock that a UWB chip latches at TX and RX. Register
// level drivers live outside this module; the package ships a no-hardware
// transport and an in-memory multi-node air link.
package radio

import (
	"time"

	"github.com/pkg/errors"
)

// Ticks is a monotonic device-local timestamp in radio clock units. The
// real-world width of one tick is a calibration constant of the transport;
// the coordinator treats it as opaque.
type Ticks uint64

const (
	// DefaultTickSeconds is the DW3000 time unit, 1/(499.2 MHz * 128),
	// roughly 15.65 ps. Meter-level ranging needs this resolution.
	DefaultTickSeconds = 1.0 / (499.2e6 * 128.0)

	// SpeedOfLight in meters per second.
	SpeedOfLight = 299792458.0
)

// ErrRxTimeout is returned by Transport.Receive when no well-formed frame
// arrived within the timeout. It is the only non-fatal receive outcome.
var ErrRxTimeout = errors.New("radio receive timeout")

// Transport is the abstract half-duplex radio the protocol state machine
// drives. Implementations never return partial frames: Receive yields either
// one well-formed frame with its RX timestamp, or ErrRxTimeout.
//
// All calls happen from the single session goroutine; implementations do not
// need to support concurrent use.
type Transport interface {
	// Transmit sends the frame and returns the TX timestamp latched by the
	// radio at the moment of transmission.
	Transmit(f *Frame) (Ticks, error)

	// TransmitAt sends the frame when the local clock reaches at, and returns
	// at as the TX timestamp. This models the delayed-send facility of UWB
	// chips, which lets a responder know its reply timestamp in advance.
	TransmitAt(f *Frame, at Ticks) (Ticks, error)

	// Receive blocks up to timeout for the next frame on the channel,
	// returning the frame and its RX timestamp. The transport does not filter
	// by destination: nodes overhear all traffic on the shared channel.
	Receive(timeout time.Duration) (*Frame, Ticks, error)

	// Now returns the current local clock value.
	Now() Ticks

	// TickSeconds returns the calibrated real-world width of one tick.
	TickSeconds() float64
}
