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

import "time"

// SimTransport is the transport used when no UWB hardware is attached:
// transmits always succeed and no frame ever arrives. An initiator therefore
// never advances past its POLL, and the session orchestrator substitutes a
// synthetic distance instead.
type SimTransport struct {
	start   time.Time
	tickSec float64
}

var _ Transport = (*SimTransport)(nil)

func NewSimTransport() *SimTransport {
	return &SimTransport{
		start:   time.Now(),
		tickSec: DefaultTickSeconds,
	}
}

func (st *SimTransport) Now() Ticks {
	return Ticks(time.Since(st.start).Seconds() / st.tickSec)
}

func (st *SimTransport) TickSeconds() float64 {
	return st.tickSec
}

func (st *SimTransport) Transmit(f *Frame) (Ticks, error) {
	return st.Now(), nil
}

func (st *SimTransport) TransmitAt(f *Frame, at Ticks) (Ticks, error) {
	if now := st.Now(); at > now {
		time.Sleep(time.Duration(float64(at-now) * st.tickSec * float64(time.Second)))
	}
	return at, nil
}

func (st *SimTransport) Receive(timeout time.Duration) (*Frame, Ticks, error) {
	time.Sleep(timeout)
	return nil, 0, ErrRxTimeout
}
