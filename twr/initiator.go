package twr

import (
	"time"

	"github.com/pkg/errors"
	"github.com/simonlingoogle/go-simplelogger"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/types"
)

// Initiate runs the initiator side of one DS-TWR exchange with peer:
// POLL out, RESP in, FINAL out, REPORT in, then the distance estimate.
//
// Every failure ends the attempt in StateFailed with one of the taxonomy
// errors; there are no internal retries. The returned Exchange describes the
// attempt either way; the RangingResult is non-nil only on completion.
func (ep *Endpoint) Initiate(peer types.NodeId) (*types.RangingResult, *Exchange, error) {
	simplelogger.AssertFalse(ep.inExchange, "exchange already in progress")
	ep.inExchange = true
	defer func() { ep.inExchange = false }()

	seq := ep.nextSeq()
	ex := &Exchange{Initiator: ep.id, Responder: peer, Seq: seq, State: StateIdle}

	// POLL
	poll := &radio.Frame{Seq: seq, Src: ep.id, Dst: peer, Type: types.MsgTypePoll}
	pollTx, err := ep.tr.Transmit(poll)
	if err != nil {
		return nil, ex, ex.fail(errors.Wrapf(types.ErrTransmitFailure, "POLL to %s: %v", peer, err))
	}
	ex.Ts.PollTx = pollTx
	ex.State = StatePollSent
	logger.Tracef("twr %s: POLL sent to %s, tx=%d", ep.id, peer, pollTx)

	// RESP
	ex.State = StateAwaitingResp
	resp, respRx, err := ep.recvExpected(ex, types.MsgTypeResp)
	if err != nil {
		return nil, ex, err
	}
	ex.Ts.RespRx = respRx
	ex.Ts.PollRx, ex.Ts.RespTx, err = unmarshalRespPayload(resp.Payload)
	if err != nil {
		return nil, ex, ex.fail(errors.Wrapf(types.ErrProtocolViolation, "RESP from %s: %v", peer, err))
	}
	ex.State = StateRespReceived
	logger.Tracef("twr %s: RESP received from %s, rx=%d", ep.id, peer, respRx)

	// FINAL, carrying all timestamps known so far.
	final := &radio.Frame{
		Seq: seq, Src: ep.id, Dst: peer, Type: types.MsgTypeFinal,
		Payload: marshalFinalPayload(ex.Ts),
	}
	finalTx, err := ep.tr.Transmit(final)
	if err != nil {
		return nil, ex, ex.fail(errors.Wrapf(types.ErrTransmitFailure, "FINAL to %s: %v", peer, err))
	}
	ex.Ts.FinalTx = finalTx
	ex.State = StateFinalSent
	logger.Tracef("twr %s: FINAL sent to %s, tx=%d", ep.id, peer, finalTx)

	// REPORT
	ex.State = StateAwaitingReport
	report, _, err := ep.recvExpected(ex, types.MsgTypeReport)
	if err != nil {
		return nil, ex, err
	}
	ex.Ts.FinalRx, err = unmarshalReportPayload(report.Payload)
	if err != nil {
		return nil, ex, ex.fail(errors.Wrapf(types.ErrProtocolViolation, "REPORT from %s: %v", peer, err))
	}

	if !ex.Ts.Ordered() {
		return nil, ex, ex.fail(errors.Wrapf(types.ErrProtocolViolation,
			"timestamps out of order in exchange with %s", peer))
	}

	distance, quality, err := ep.est.Estimate(ex.Ts)
	if err != nil {
		return nil, ex, ex.fail(err)
	}

	ex.State = StateComplete
	result := &types.RangingResult{
		SourceId:  ep.id,
		PeerId:    peer,
		Distance:  distance,
		Quality:   quality,
		Timestamp: time.Now().Unix(),
	}
	logger.Debugf("twr %s: range to %s = %.2f m (Q=%.2f)", ep.id, peer, distance, quality)
	return result, ex, nil
}

// recvExpected waits for the next step of the ongoing exchange. The
// initiator is strict: a timeout and any frame with unexpected type, sender
// or sequence both end the attempt, distinguished in the error taxonomy.
func (ep *Endpoint) recvExpected(ex *Exchange, want types.MsgType) (*radio.Frame, radio.Ticks, error) {
	f, rxAt, err := ep.tr.Receive(ep.cfg.RangingTimeout)
	if err != nil {
		if errors.Is(err, radio.ErrRxTimeout) {
			return nil, 0, ex.fail(errors.Wrapf(types.ErrResponseTimeout,
				"no %s from %s within %v", want, ex.Responder, ep.cfg.RangingTimeout))
		}
		return nil, 0, ex.fail(errors.Wrapf(types.ErrResponseTimeout,
			"receive failed awaiting %s from %s: %v", want, ex.Responder, err))
	}
	if f.Type != want || f.Src != ex.Responder || f.Dst != ep.id || f.Seq != ex.Seq {
		return nil, 0, ex.fail(errors.Wrapf(types.ErrProtocolViolation,
			"expected %s from %s (seq %d), got %v", want, ex.Responder, ex.Seq, f))
	}
	return f, rxAt, nil
}
