// Package idhash derives deterministic identifiers for backtest runs.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeRunID returns a stable hex identifier for a run. The same pool,
// strategy, time window, and event count always hash to the same ID.
func ComputeRunID(pool, strategyID string, startMs, endMs int64, eventCount int) string {
	payload := strings.Join([]string{
		pool,
		strategyID,
		fmt.Sprintf("%d", startMs),
		fmt.Sprintf("%d", endMs),
		fmt.Sprintf("%d", eventCount),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
