package twr

import (
	"time"

	"github.com/pkg/errors"
	"github.com/simonlingoogle/go-simplelogger"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/types"
)

// Respond listens up to listen for a POLL addressed to this node and, when
// one arrives, serves the responder side of the exchange: RESP out at a
// pre-scheduled time, FINAL in, REPORT out.
//
// Frames not addressed to this node, or of unexpected type, are overheard
// traffic on the shared channel: they are silently ignored and listening
// continues. A (nil, nil) return means no exchange was started within the
// listen window, which is the normal idle outcome.
func (ep *Endpoint) Respond(listen time.Duration) (*Exchange, error) {
	simplelogger.AssertFalse(ep.inExchange, "exchange already in progress")
	ep.inExchange = true
	defer func() { ep.inExchange = false }()

	// AwaitingPoll: wait for a POLL addressed to us.
	deadline := time.Now().Add(listen)
	var poll *radio.Frame
	var pollRx radio.Ticks
	for poll == nil {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		f, rxAt, err := ep.tr.Receive(remaining)
		if err != nil {
			return nil, nil // timeout: nothing to serve
		}
		if f.Type != types.MsgTypePoll || f.Dst != ep.id {
			continue // not for me, stay in AwaitingPoll
		}
		poll, pollRx = f, rxAt
	}

	ex := &Exchange{Initiator: poll.Src, Responder: ep.id, Seq: poll.Seq, State: StatePollReceived}
	ex.Ts.PollRx = pollRx
	logger.Tracef("twr %s: POLL from %s, rx=%d", ep.id, ex.Initiator, pollRx)

	// RESP, scheduled one turn-around after the POLL so its TX timestamp is
	// known before it leaves the antenna.
	respTx := pollRx + ep.turnaroundTicks()
	resp := &radio.Frame{
		Seq: ex.Seq, Src: ep.id, Dst: ex.Initiator, Type: types.MsgTypeResp,
		Payload: marshalRespPayload(pollRx, respTx),
	}
	if _, err := ep.tr.TransmitAt(resp, respTx); err != nil {
		return ex, ex.fail(errors.Wrapf(types.ErrTransmitFailure, "RESP to %s: %v", ex.Initiator, err))
	}
	ex.Ts.RespTx = respTx
	ex.State = StateRespSent
	logger.Tracef("twr %s: RESP sent to %s, tx=%d", ep.id, ex.Initiator, respTx)

	// AwaitingFinal. Overheard mismatched frames do not abort the exchange.
	ex.State = StateAwaitingFinal
	finalDeadline := time.Now().Add(ep.cfg.RangingTimeout)
	var final *radio.Frame
	var finalRx radio.Ticks
	for final == nil {
		remaining := time.Until(finalDeadline)
		if remaining <= 0 {
			return ex, ex.fail(errors.Wrapf(types.ErrResponseTimeout,
				"no FINAL from %s within %v", ex.Initiator, ep.cfg.RangingTimeout))
		}
		f, rxAt, err := ep.tr.Receive(remaining)
		if err != nil {
			return ex, ex.fail(errors.Wrapf(types.ErrResponseTimeout,
				"no FINAL from %s within %v", ex.Initiator, ep.cfg.RangingTimeout))
		}
		if f.Type != types.MsgTypeFinal || f.Dst != ep.id || f.Src != ex.Initiator || f.Seq != ex.Seq {
			continue
		}
		final, finalRx = f, rxAt
	}
	ex.Ts.FinalRx = finalRx
	ex.State = StateFinalReceived

	// The FINAL payload completes this side's view of the exchange.
	pollTx, _, _, respRx, err := unmarshalFinalPayload(final.Payload)
	if err != nil {
		return ex, ex.fail(errors.Wrapf(types.ErrProtocolViolation, "FINAL from %s: %v", ex.Initiator, err))
	}
	ex.Ts.PollTx = pollTx
	ex.Ts.RespRx = respRx
	logger.Tracef("twr %s: FINAL from %s, rx=%d", ep.id, ex.Initiator, finalRx)

	// REPORT, after the radio turn-around.
	time.Sleep(ep.cfg.Turnaround)
	report := &radio.Frame{
		Seq: ex.Seq, Src: ep.id, Dst: ex.Initiator, Type: types.MsgTypeReport,
		Payload: marshalReportPayload(finalRx),
	}
	if _, err := ep.tr.Transmit(report); err != nil {
		return ex, ex.fail(errors.Wrapf(types.ErrTransmitFailure, "REPORT to %s: %v", ex.Initiator, err))
	}
	ex.State = StateReportSent

	ex.State = StateComplete
	logger.Debugf("twr %s: served exchange for %s", ep.id, ex.Initiator)
	return ex, nil
}
