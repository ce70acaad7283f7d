// Package snapshot produces the deterministic balance snapshot schedule used
// by the tier statement: three points in time (now, 45 days ago, 90 days ago)
// and the triple of USD cent balances observed at them. How the balances are
// discovered is out of scope; callers hand in three aggregate totals.
package snapshot

import (
	"fmt"
	"time"
)

// Intervals between snapshots, oldest last.
const (
	snapshotCount  = 3
	snapshotSpread = 45 * 24 * time.Hour
)

// MaxBalanceCents bounds each balance so that the in-circuit comparators stay
// within their 64-bit-magnitude guarantees.
const MaxBalanceCents = uint64(1) << 62

// Snapshot is an immutable point in time at which a balance is sampled.
type Snapshot struct {
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
}

// Schedule returns the three snapshots for a statement anchored at now:
// now, 45 days ago and 90 days ago.
func Schedule(now time.Time) [snapshotCount]Snapshot {
	var s [snapshotCount]Snapshot
	for i := 0; i < snapshotCount; i++ {
		at := now.Add(-time.Duration(i) * snapshotSpread)
		s[i] = Snapshot{
			Timestamp: at.Unix(),
			Date:      at.UTC().Format("2006-01-02"),
		}
	}
	return s
}

// BalanceTriple holds the three private balance witnesses in USD cents, one
// per snapshot. Balances are never logged or persisted.
type BalanceTriple [snapshotCount]uint64

// Validate checks that every balance fits the circuit's magnitude bound.
func (b BalanceTriple) Validate() error {
	for i, v := range b {
		if v >= MaxBalanceCents {
			return fmt.Errorf("balance %d out of range: %d >= 2^62", i+1, v)
		}
	}
	return nil
}

// FloorAverage returns floor((b1+b2+b3)/3). The sum of three values below
// 2^62 cannot overflow uint64.
func (b BalanceTriple) FloorAverage() uint64 {
	return (b[0] + b[1] + b[2]) / 3
}

// Min returns the least of the three balances.
func (b BalanceTriple) Min() uint64 {
	m := b[0]
	for _, v := range b[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
