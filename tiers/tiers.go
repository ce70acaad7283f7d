// Package tiers defines the canonical wealth tier table shared by the prover,
// the off-chain verifier and the ledger program. All amounts are integer USD
// cents. The seven ranges are contiguous and non-overlapping, partitioning
// [0, MaxBalance), so every floor average maps to exactly one tier.
package tiers

import (
	"fmt"
)

// MaxBalance is the exclusive upper bound of the last tier, in USD cents.
// It acts as a sentinel for "no practical ceiling" (10^16 cents = 100
// trillion USD).
const MaxBalance = uint64(10_000_000_000_000_000)

// NumTiers is the number of wealth tiers.
const NumTiers = 7

// Tier is an immutable tier definition. LowerBound is inclusive, UpperBound
// is exclusive.
type Tier struct {
	Number     int    `json:"number"`
	Label      string `json:"label"`
	LowerBound uint64 `json:"lowerBound"`
	UpperBound uint64 `json:"upperBound"`
}

// table is the single source of truth for tier bounds. The ledger program
// embeds an independent copy of the same bounds and cross-checks it against
// this table at construction time.
var table = [NumTiers]Tier{
	{Number: 1, Label: "Seed", LowerBound: 0, UpperBound: 100_000},
	{Number: 2, Label: "Sprout", LowerBound: 100_000, UpperBound: 1_000_000},
	{Number: 3, Label: "Tree", LowerBound: 1_000_000, UpperBound: 5_000_000},
	{Number: 4, Label: "Mountain", LowerBound: 5_000_000, UpperBound: 25_000_000},
	{Number: 5, Label: "Ocean", LowerBound: 25_000_000, UpperBound: 100_000_000},
	{Number: 6, Label: "Moon", LowerBound: 100_000_000, UpperBound: 500_000_000},
	{Number: 7, Label: "Sun", LowerBound: 500_000_000, UpperBound: MaxBalance},
}

// Table returns a copy of the full tier table, ordered by tier number.
func Table() [NumTiers]Tier {
	return table
}

// ForAverage returns the unique tier whose range contains the given floor
// average. It is total over [0, MaxBalance).
func ForAverage(avgCents uint64) (Tier, error) {
	for _, t := range table {
		if avgCents >= t.LowerBound && avgCents < t.UpperBound {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("average %d cents exceeds the tier table ceiling (%d)", avgCents, MaxBalance)
}

// ByNumber returns the tier definition for the given tier number (1-7).
func ByNumber(n int) (Tier, error) {
	if n < 1 || n > NumTiers {
		return Tier{}, fmt.Errorf("unknown tier number %d", n)
	}
	return table[n-1], nil
}

// FromBounds returns the tier whose bounds exactly match the given pair. It
// is the reverse lookup used to validate the public signals of a proof: a
// near-miss is not a tier.
func FromBounds(lower, upper uint64) (Tier, error) {
	for _, t := range table {
		if t.LowerBound == lower && t.UpperBound == upper {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("bounds [%d, %d) do not match any tier", lower, upper)
}

// FormatUSD renders an amount of USD cents as a human readable dollar string,
// e.g. 8_333_333 -> "$83,333.33".
func FormatUSD(cents uint64) string {
	dollars := cents / 100
	rem := cents % 100
	return fmt.Sprintf("$%s.%02d", groupThousands(dollars), rem)
}

// String implements fmt.Stringer for a tier, e.g. "Tier 4 (Mountain): $50,000.00 - $250,000.00".
func (t Tier) String() string {
	if t.UpperBound == MaxBalance {
		return fmt.Sprintf("Tier %d (%s): %s+", t.Number, t.Label, FormatUSD(t.LowerBound))
	}
	return fmt.Sprintf("Tier %d (%s): %s - %s", t.Number, t.Label, FormatUSD(t.LowerBound), FormatUSD(t.UpperBound))
}

func groupThousands(v uint64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
