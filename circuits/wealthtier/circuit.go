// Package wealthtier implements the tier statement circuit: the floor
// average of three private balance snapshots lies inside a public tier
// range. The proof additionally binds an identity nullifier and a timestamp
// so neither can be swapped after the fact.
package wealthtier

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
)

type Circuit struct {
	// ---------------------------------------------------------------------------------------------
	// PUBLIC INPUTS
	// The declared order is the wire order of the public signals:
	// [tierLowerBound, tierUpperBound, nullifier, timestamp].

	TierLowerBound frontend.Variable `gnark:",public"`
	TierUpperBound frontend.Variable `gnark:",public"`
	Nullifier      frontend.Variable `gnark:",public"`
	Timestamp      frontend.Variable `gnark:",public"`

	// ---------------------------------------------------------------------------------------------
	// SECRET INPUTS

	Balance1 frontend.Variable
	Balance2 frontend.Variable
	Balance3 frontend.Variable
}

// Define declares the circuit's constraints. There is no "proof of a false
// statement": a witness outside the claimed tier range fails at witness
// generation time, so provable/unprovable is the only outcome.
func (circuit Circuit) Define(api frontend.API) error {
	avg := Avg3(api, circuit.Balance1, circuit.Balance2, circuit.Balance3)

	bc := cmp.NewBoundedComparator(api, maxAbsDiff, false)
	// lower bound is inclusive, upper bound is strict
	bc.AssertIsLessEq(circuit.TierLowerBound, avg)
	bc.AssertIsLess(avg, circuit.TierUpperBound)

	// Square the nullifier and the timestamp so the backend treats both as
	// constrained signals. An otherwise-unconstrained public input could be
	// swapped by a malicious relay without invalidating the proof.
	api.Mul(circuit.Nullifier, circuit.Nullifier)
	api.Mul(circuit.Timestamp, circuit.Timestamp)
	return nil
}
