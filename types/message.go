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

package types

import "fmt"

// MsgType tags the role of a frame within the DS-TWR four-message exchange.
// Values are on-air constants shared by all deployed units.
type MsgType uint8

const (
	MsgTypePoll   MsgType = 0x61
	MsgTypeResp   MsgType = 0x50
	MsgTypeFinal  MsgType = 0x69
	MsgTypeReport MsgType = 0x72
)

func (m MsgType) Valid() bool {
	switch m {
	case MsgTypePoll, MsgTypeResp, MsgTypeFinal, MsgTypeReport:
		return true
	}
	return false
}

func (m MsgType) String() string {
	switch m {
	case MsgTypePoll:
		return "POLL"
	case MsgTypeResp:
		return "RESP"
	case MsgTypeFinal:
		return "FINAL"
	case MsgTypeReport:
		return "REPORT"
	default:
		return fmt.Sprintf("MsgType(0x%02x)", uint8(m))
	}
}
