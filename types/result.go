package types

// RangingResult is one completed distance estimate, produced exactly once per
// exchange that reached its terminal success state. Immutable once built;
// ownership transfers to the telemetry collaborator.
type RangingResult struct {
	SourceId  NodeId
	PeerId    NodeId
	Distance  float64 // meters
	Quality   float64 // heuristic confidence in [0, 1]
	Timestamp int64   // unix seconds at completion
}
