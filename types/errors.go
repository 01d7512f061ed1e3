package types

import "github.com/pkg/errors"

// Ranging failure taxonomy. Every failed exchange surfaces to the session
// orchestrator as exactly one of these, wrapped with context. The orchestrator
// owns the retry policy; the protocol state machine never retries.
var (
	// ErrTransmitFailure: the local radio could not send a frame. Local
	// condition, no on-air corruption implied.
	ErrTransmitFailure = errors.New("transmit failure")

	// ErrResponseTimeout: no frame arrived within the ranging timeout. The
	// peer is unreachable or busy; recoverable by retry.
	ErrResponseTimeout = errors.New("response timeout")

	// ErrProtocolViolation: a frame with unexpected type, sender or sequence
	// arrived mid-exchange, or the collected timestamps are out of order.
	// Treated like a timeout for retry purposes, logged distinctly.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrArithmetic: degenerate timestamp set in the distance estimator
	// (zero round-trip denominator). Must never silently yield a distance.
	ErrArithmetic = errors.New("degenerate timestamp arithmetic")
)
