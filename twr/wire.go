package twr

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/radio"
)

// Payload layouts of the DS-TWR messages, little-endian 64-bit tick values.
// POLL carries no payload. RESP carries the responder's pollRx and its
// pre-scheduled respTx. FINAL carries the four timestamps the initiator
// knows at that point. REPORT returns the responder's finalRx.
const (
	respPayloadLen   = 16
	finalPayloadLen  = 32
	reportPayloadLen = 8
)

func marshalRespPayload(pollRx, respTx radio.Ticks) []byte {
	b := make([]byte, respPayloadLen)
	binary.LittleEndian.PutUint64(b[0:8], uint64(pollRx))
	binary.LittleEndian.PutUint64(b[8:16], uint64(respTx))
	return b
}

func unmarshalRespPayload(b []byte) (pollRx, respTx radio.Ticks, err error) {
	if len(b) != respPayloadLen {
		return 0, 0, errors.Errorf("RESP payload has %d bytes, want %d", len(b), respPayloadLen)
	}
	pollRx = radio.Ticks(binary.LittleEndian.Uint64(b[0:8]))
	respTx = radio.Ticks(binary.LittleEndian.Uint64(b[8:16]))
	return pollRx, respTx, nil
}

func marshalFinalPayload(ts Timestamps) []byte {
	b := make([]byte, finalPayloadLen)
	binary.LittleEndian.PutUint64(b[0:8], uint64(ts.PollTx))
	binary.LittleEndian.PutUint64(b[8:16], uint64(ts.PollRx))
	binary.LittleEndian.PutUint64(b[16:24], uint64(ts.RespTx))
	binary.LittleEndian.PutUint64(b[24:32], uint64(ts.RespRx))
	return b
}

func unmarshalFinalPayload(b []byte) (pollTx, pollRx, respTx, respRx radio.Ticks, err error) {
	if len(b) != finalPayloadLen {
		return 0, 0, 0, 0, errors.Errorf("FINAL payload has %d bytes, want %d", len(b), finalPayloadLen)
	}
	pollTx = radio.Ticks(binary.LittleEndian.Uint64(b[0:8]))
	pollRx = radio.Ticks(binary.LittleEndian.Uint64(b[8:16]))
	respTx = radio.Ticks(binary.LittleEndian.Uint64(b[16:24]))
	respRx = radio.Ticks(binary.LittleEndian.Uint64(b[24:32]))
	return pollTx, pollRx, respTx, respRx, nil
}

func marshalReportPayload(finalRx radio.Ticks) []byte {
	b := make([]byte, reportPayloadLen)
	binary.LittleEndian.PutUint64(b, uint64(finalRx))
	return b
}

func unmarshalReportPayload(b []byte) (finalRx radio.Ticks, err error) {
	if len(b) != reportPayloadLen {
		return 0, errors.Errorf("REPORT payload has %d bytes, want %d", len(b), reportPayloadLen)
	}
	return radio.Ticks(binary.LittleEndian.Uint64(b)), nil
}
