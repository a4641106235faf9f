package domain

import "time"

// AnomalyKind classifies a recoverable replay anomaly.
type AnomalyKind string

// Anomaly kind constants. All are recovered locally; none aborts replay.
const (
	// AnomalyInsufficientBalance marks a withdraw/burn clamped to what
	// was available instead of going negative.
	AnomalyInsufficientBalance AnomalyKind = "insufficient_balance"

	// AnomalyMissingPosition marks a lookup for an expected named
	// position that was absent; the operation became a no-op.
	AnomalyMissingPosition AnomalyKind = "missing_position"

	// AnomalyNumericAssertion marks an alignment post-condition that
	// failed beyond tolerance.
	AnomalyNumericAssertion AnomalyKind = "numeric_assertion"
)

// Anomaly is one diagnostic entry recorded alongside the history logs so
// replay irregularities can be audited without re-running.
type Anomaly struct {
	EventIndex int
	Timestamp  time.Time
	Kind       AnomalyKind
	Position   string // position name involved, if any
	Detail     string
}
