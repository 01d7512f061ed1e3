package twr

import (
	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/types"
)

// Timestamps is the full six-timestamp set of one DS-TWR exchange. PollTx,
// RespRx and FinalTx are in the initiator's clock domain; PollRx, RespTx and
// FinalRx in the responder's. The two domains are never compared directly.
type Timestamps struct {
	PollTx  radio.Ticks
	PollRx  radio.Ticks
	RespTx  radio.Ticks
	RespRx  radio.Ticks
	FinalTx radio.Ticks
	FinalRx radio.Ticks
}

// Ordered reports whether the timestamps advance monotonically within each
// clock domain. The protocol state machine rejects unordered sets before the
// estimator ever sees them.
func (ts Timestamps) Ordered() bool {
	return ts.PollTx < ts.RespRx && ts.RespRx < ts.FinalTx &&
		ts.PollRx < ts.RespTx && ts.RespTx < ts.FinalRx
}

// EstimatorParams hold the calibration constants and the quality heuristic
// parameters of the distance estimator. The quality values are placeholders
// without a documented derivation, hence parameters rather than constants.
type EstimatorParams struct {
	TickSeconds        float64 // real-world width of one clock tick
	CalibrationOffsetM float64 // deployment-specific antenna/processing offset
	MinPlausibleM      float64 // plausible distance band, lower bound
	MaxPlausibleM      float64 // plausible distance band, upper bound
	QualityClean       float64 // quality of a plausible clean exchange
	QualitySuspect     float64 // quality cap outside the plausible band
}

func DefaultEstimatorParams() EstimatorParams {
	return EstimatorParams{
		TickSeconds:        radio.DefaultTickSeconds,
		CalibrationOffsetM: 0,
		MinPlausibleM:      0,
		MaxPlausibleM:      100,
		QualityClean:       0.9,
		QualitySuspect:     0.3,
	}
}

// Estimator converts one exchange's timestamps into a distance estimate with
// a confidence score. It is a pure function of its inputs and parameters.
type Estimator struct {
	params EstimatorParams
}

func NewEstimator(params EstimatorParams) *Estimator {
	return &Estimator{params: params}
}

// TimeOfFlightTicks computes the one-way time of flight in ticks using the
// asymmetric double-sided formula
//
//	ToF = (Ra*Rb - Da*Db) / (Ra + Rb + Da + Db)
//
// which cancels first-order clock drift between the two independently
// clocked radios. A zero denominator is a degenerate timing set and yields
// types.ErrArithmetic, never a distance.
func (e *Estimator) TimeOfFlightTicks(ts Timestamps) (float64, error) {
	ra := int64(ts.RespRx - ts.PollTx)
	rb := int64(ts.FinalRx - ts.RespTx)
	da := int64(ts.RespTx - ts.PollRx)
	db := int64(ts.FinalTx - ts.RespRx)

	denom := ra + rb + da + db
	if denom == 0 {
		return 0, errors.Wrap(types.ErrArithmetic, "zero round-trip denominator")
	}
	return float64(ra*rb-da*db) / float64(denom), nil
}

// Estimate computes distance in meters and a quality score in [0, 1] from
// the six timestamps. Identical inputs always produce identical outputs.
func (e *Estimator) Estimate(ts Timestamps) (distance, quality float64, err error) {
	tof, err := e.TimeOfFlightTicks(ts)
	if err != nil {
		return 0, 0, err
	}

	tofSeconds := tof * e.params.TickSeconds
	distance = tofSeconds*radio.SpeedOfLight/2.0 + e.params.CalibrationOffsetM

	quality = e.params.QualityClean
	if distance < e.params.MinPlausibleM || distance > e.params.MaxPlausibleM {
		quality = e.params.QualitySuspect
	}
	return distance, quality, nil
}
