package wealthtier

import (
	"fmt"
	"math/big"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/snapshot"
	"github.com/proofoflove/zktier/tiers"
)

// CircuitInputs pairs the private witnesses with the public signals of one
// tier statement. Instances are built fresh per proof request and discarded
// after proving; the balances inside must never be logged.
type CircuitInputs struct {
	Balances  snapshot.BalanceTriple
	Tier      tiers.Tier
	Nullifier *big.Int
	Timestamp int64
}

// NewCircuitInputs computes the host-side floor average of the balances,
// resolves the matching tier and assembles the circuit inputs. The returned
// tier is by construction the one the circuit will accept for the same
// balances: both use the same floor-average value.
func NewCircuitInputs(balances snapshot.BalanceTriple, nullif *big.Int, timestamp int64) (*CircuitInputs, error) {
	if err := balances.Validate(); err != nil {
		return nil, err
	}
	if nullif == nil || nullif.Sign() < 0 || nullif.Cmp(circuits.TierProofCurve.ScalarField()) >= 0 {
		return nil, fmt.Errorf("nullifier is not a canonical field element")
	}
	if timestamp < 0 {
		return nil, fmt.Errorf("negative timestamp %d", timestamp)
	}
	tier, err := tiers.ForAverage(balances.FloorAverage())
	if err != nil {
		return nil, err
	}
	return &CircuitInputs{
		Balances:  balances,
		Tier:      tier,
		Nullifier: new(big.Int).Set(nullif),
		Timestamp: timestamp,
	}, nil
}

// Assignment returns the full witness assignment for the circuit.
func (ci *CircuitInputs) Assignment() *Circuit {
	return &Circuit{
		TierLowerBound: ci.Tier.LowerBound,
		TierUpperBound: ci.Tier.UpperBound,
		Nullifier:      ci.Nullifier,
		Timestamp:      ci.Timestamp,
		Balance1:       ci.Balances[0],
		Balance2:       ci.Balances[1],
		Balance3:       ci.Balances[2],
	}
}

// PublicSignals returns the public signals as decimal strings in wire order.
func (ci *CircuitInputs) PublicSignals() []string {
	return circuits.BigIntArrayToStringArray([]*big.Int{
		new(big.Int).SetUint64(ci.Tier.LowerBound),
		new(big.Int).SetUint64(ci.Tier.UpperBound),
		new(big.Int).Set(ci.Nullifier),
		big.NewInt(ci.Timestamp),
	})
}
