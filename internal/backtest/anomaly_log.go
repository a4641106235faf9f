package backtest

import (
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// AnomalyLog collects anomalies reported during a run, stamped with the
// event the engine was processing at the time.
type AnomalyLog struct {
	entries []domain.Anomaly

	cursorIndex     int
	cursorTimestamp time.Time
}

// NewAnomalyLog creates an empty log.
func NewAnomalyLog() *AnomalyLog {
	return &AnomalyLog{cursorIndex: -1}
}

// setCursor records which event is currently being processed so that
// anomalies reported by the strategy carry the right position in the run.
func (l *AnomalyLog) setCursor(eventIndex int, ts time.Time) {
	l.cursorIndex = eventIndex
	l.cursorTimestamp = ts
}

// RecordAnomaly appends an anomaly at the current cursor.
func (l *AnomalyLog) RecordAnomaly(kind domain.AnomalyKind, position, detail string) {
	l.entries = append(l.entries, domain.Anomaly{
		EventIndex: l.cursorIndex,
		Timestamp:  l.cursorTimestamp,
		Kind:       kind,
		Position:   position,
		Detail:     detail,
	})
}

// Entries returns the recorded anomalies in report order.
func (l *AnomalyLog) Entries() []domain.Anomaly {
	return l.entries
}
