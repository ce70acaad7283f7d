package wealthtier

import (
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/math/cmp"

	"github.com/proofoflove/zktier/circuits"
)

func init() {
	solver.RegisterHint(DivBy3Hint)
}

// maxAbsDiff bounds every in-circuit comparison to 64-bit magnitude. Field
// elements are unsigned modulo a large prime, so an unbounded less-than is
// not well defined for values that would read as "negative".
var maxAbsDiff = new(big.Int).Lsh(big.NewInt(1), 64)

// DivBy3Hint computes the quotient and remainder of the euclidean division of
// the single input by 3. Hints are unconstrained advice: Avg3 re-proves the
// division inside the circuit.
func DivBy3Hint(_ *big.Int, inputs, outputs []*big.Int) error {
	three := big.NewInt(3)
	outputs[0].Div(inputs[0], three)
	outputs[1].Mod(inputs[0], three)
	return nil
}

// Avg3 proves avg = floor((a+b+c)/3) without a native division operation.
// The prover supplies quotient q and remainder r as hint witnesses and the
// circuit enforces:
//
//	a+b+c == 3q + r
//	r(r-1)(r-2) == 0        (r in {0,1,2})
//	q < 2^62                (no wraparound with a huge q and a small r)
//
// All three constraints are mandatory; dropping either range check reopens a
// soundness hole where a cheating prover claims an arbitrary average.
func Avg3(api frontend.API, a, b, c frontend.Variable) frontend.Variable {
	sum := api.Add(a, b, c)
	qr, err := api.Compiler().NewHint(DivBy3Hint, 2, sum)
	if err != nil {
		circuits.FrontendError(api, "divBy3 hint failed", err)
		return 0
	}
	q, r := qr[0], qr[1]
	api.AssertIsEqual(sum, api.Add(api.Mul(3, q), r))
	api.AssertIsEqual(api.Mul(r, api.Sub(r, 1), api.Sub(r, 2)), 0)
	// bit decomposition rather than the rangecheck gadget: the latter emits a
	// commitment under Groth16, which the fixed {A, B, C} proof layout of the
	// on-chain verifier cannot carry
	bits.ToBinary(api, q, bits.WithNbDigits(circuits.BalanceBits))
	return q
}

// Min3 returns the least of the three values via two chained bounded
// "select smaller" operations.
func Min3(api frontend.API, a, b, c frontend.Variable) frontend.Variable {
	bc := cmp.NewBoundedComparator(api, maxAbsDiff, false)
	ab := api.Select(bc.IsLess(a, b), a, b)
	return api.Select(bc.IsLess(c, ab), c, ab)
}
