package verifier

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	qt "github.com/frankban/quicktest"

	"github.com/proofoflove/zktier/circuits/wealthtier"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/snapshot"
)

func signals(lower, upper, nullif, ts int64) [4]*big.Int {
	return [4]*big.Int{
		big.NewInt(lower), big.NewInt(upper), big.NewInt(nullif), big.NewInt(ts),
	}
}

func TestCheckBounds(t *testing.T) {
	c := qt.New(t)

	v, err := checkBounds(signals(5_000_000, 25_000_000, 777, 1700000000), 4)
	c.Assert(err, qt.IsNil)
	c.Assert(v.Tier.Number, qt.Equals, 4)
	c.Assert(v.Nullifier.Int64(), qt.Equals, int64(777))
	c.Assert(v.Timestamp, qt.Equals, int64(1700000000))

	// bounds belong to tier 4, but tier 5 is declared
	_, err = checkBounds(signals(5_000_000, 25_000_000, 777, 1700000000), 5)
	var mismatch *BoundMismatchError
	c.Assert(errors.As(err, &mismatch), qt.IsTrue)
	c.Assert(mismatch.Declared.Number, qt.Equals, 5)

	// a single off-by-one cent in the bounds is a mismatch
	_, err = checkBounds(signals(5_000_001, 25_000_000, 777, 1700000000), 4)
	c.Assert(errors.As(err, &mismatch), qt.IsTrue)

	// unknown tier numbers are rejected before any comparison
	_, err = checkBounds(signals(0, 100_000, 777, 1700000000), 0)
	c.Assert(err, qt.IsNotNil)
	_, err = checkBounds(signals(0, 100_000, 777, 1700000000), 8)
	c.Assert(err, qt.IsNotNil)
}

func TestParseSignalsFieldBound(t *testing.T) {
	c := qt.New(t)

	p := &prover.Proof{PublicSignals: [4]string{"5000000", "25000000", "777", "1700000000"}}
	_, err := parseSignals(p)
	c.Assert(err, qt.IsNil)

	// a nullifier shifted by the group order must be rejected, not reduced
	shifted := new(big.Int).Add(big.NewInt(777), fr.Modulus())
	p.PublicSignals[2] = shifted.String()
	_, err = parseSignals(p)
	c.Assert(err, qt.ErrorMatches, "public signal 2 exceeds.*")

	// the modulus itself is already out of range
	p.PublicSignals[2] = fr.Modulus().String()
	_, err = parseSignals(p)
	c.Assert(err, qt.IsNotNil)
}

func TestGnarkProofMalformed(t *testing.T) {
	c := qt.New(t)

	p := &prover.Proof{
		A: prover.G1Point{X: "not-a-number", Y: "2"},
		B: prover.G2Point{X: [2]string{"3", "4"}, Y: [2]string{"5", "6"}},
		C: prover.G1Point{X: "7", Y: "8"},
	}
	_, err := gnarkProof(p)
	c.Assert(err, qt.IsNotNil)

	p.A.X = "1"
	p.B.Y[1] = ""
	_, err = gnarkProof(p)
	c.Assert(err, qt.IsNotNil)
}

func TestVerifyRoundTrip(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
	c := qt.New(t)

	cs, err := wealthtier.Compile()
	c.Assert(err, qt.IsNil)
	pk, vk, err := wealthtier.Setup(cs)
	c.Assert(err, qt.IsNil)

	gen := prover.NewGeneratorFromSetup(cs, pk)
	res, err := gen.Generate(context.Background(),
		snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000},
		big.NewInt(424242), 1700000000)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Tier.Number, qt.Equals, 4)

	v := NewFromKey(vk)
	out, err := v.Verify(res.Proof, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Tier.Number, qt.Equals, 4)
	c.Assert(out.Nullifier.Int64(), qt.Equals, int64(424242))
	c.Assert(out.Timestamp, qt.Equals, int64(1700000000))

	// a valid proof declared as the wrong tier is a bound mismatch
	_, err = v.Verify(res.Proof, 5)
	var mismatch *BoundMismatchError
	c.Assert(errors.As(err, &mismatch), qt.IsTrue)

	// a tampered public signal breaks the pairing check
	tampered := *res.Proof
	tampered.PublicSignals[2] = "424243"
	_, err = v.Verify(&tampered, 4)
	c.Assert(errors.Is(err, ErrInvalidProof), qt.IsTrue)
}
