package twr

import (
	"fmt"

	"github.com/uwbprox/rangenet/types"
)

// State enumerates the protocol states of both roles of an exchange.
type State int

const (
	StateIdle State = iota

	// initiator states
	StatePollSent
	StateAwaitingResp
	StateRespReceived
	StateFinalSent
	StateAwaitingReport

	// responder states
	StateAwaitingPoll
	StatePollReceived
	StateRespSent
	StateAwaitingFinal
	StateFinalReceived
	StateReportSent

	// terminal states
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePollSent:
		return "PollSent"
	case StateAwaitingResp:
		return "AwaitingResp"
	case StateRespReceived:
		return "RespReceived"
	case StateFinalSent:
		return "FinalSent"
	case StateAwaitingReport:
		return "AwaitingReport"
	case StateAwaitingPoll:
		return "AwaitingPoll"
	case StatePollReceived:
		return "PollReceived"
	case StateRespSent:
		return "RespSent"
	case StateAwaitingFinal:
		return "AwaitingFinal"
	case StateFinalReceived:
		return "FinalReceived"
	case StateReportSent:
		return "ReportSent"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state ends an exchange.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Exchange is the transient record of one ranging attempt. It is created
// when a slot begins an attempt and discarded when the attempt reaches a
// terminal state; at most one is in flight per node.
type Exchange struct {
	Initiator types.NodeId
	Responder types.NodeId
	Seq       uint8
	Ts        Timestamps
	State     State
	Err       error
}

// fail moves the exchange to its terminal failure state and returns err for
// convenient propagation.
func (ex *Exchange) fail(err error) error {
	ex.State = StateFailed
	ex.Err = err
	return err
}

func (ex *Exchange) String() string {
	return fmt.Sprintf("Exchange{%s->%s,seq=%d,%s}", ex.Initiator, ex.Responder, ex.Seq, ex.State)
}
