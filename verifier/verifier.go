// Package verifier runs the off-chain succinct verification of tier proofs:
// the Groth16 pairing check against a fixed verification key, followed by the
// mandatory re-derivation of the declared tier's bounds. A cryptographically
// valid proof whose embedded bounds belong to a different tier is rejected.
package verifier

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/circuits/wealthtier"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/tiers"
)

// ErrInvalidProof is returned when the pairing check fails: the proof is
// structurally invalid or was built against different public inputs or a
// different verification key.
var ErrInvalidProof = errors.New("invalid proof")

// BoundMismatchError reports a proof whose embedded tier bounds do not match
// the declared tier. It carries both sides so a tooling bug can be told apart
// from a malicious claim.
type BoundMismatchError struct {
	Declared           tiers.Tier
	GotLower, GotUpper *big.Int
}

func (e *BoundMismatchError) Error() string {
	return fmt.Sprintf("proof bounds [%s, %s) do not match declared tier %d bounds [%d, %d)",
		e.GotLower, e.GotUpper, e.Declared.Number, e.Declared.LowerBound, e.Declared.UpperBound)
}

// Verification is the outcome of a successful verification. Nullifier and
// Timestamp are returned for the caller's own replay and expiry bookkeeping;
// this package keeps no state.
type Verification struct {
	Tier      tiers.Tier
	Nullifier *big.Int
	Timestamp int64
}

// Verifier verifies proofs produced by the native gnark backend.
type Verifier struct {
	vk groth16.VerifyingKey
}

// New loads the verification key from a file. The key must correspond to the
// same compiled circuit as the proving key.
func New(vkPath string) (*Verifier, error) {
	vk, err := circuits.LoadVerifyingKey(vkPath)
	if err != nil {
		return nil, fmt.Errorf("could not load verification key: %w", err)
	}
	return &Verifier{vk: vk}, nil
}

// NewFromKey wraps an in-memory verification key.
func NewFromKey(vk groth16.VerifyingKey) *Verifier {
	return &Verifier{vk: vk}
}

// Verify runs the pairing check and the tier bound equality check for the
// declared tier number.
func (v *Verifier) Verify(proof *prover.Proof, declaredTier int) (*Verification, error) {
	signals, err := parseSignals(proof)
	if err != nil {
		return nil, err
	}
	gproof, err := gnarkProof(proof)
	if err != nil {
		return nil, err
	}
	pubWitness, err := frontend.NewWitness(&wealthtier.Circuit{
		TierLowerBound: signals[circuits.PubInputLowerBound],
		TierUpperBound: signals[circuits.PubInputUpperBound],
		Nullifier:      signals[circuits.PubInputNullifier],
		Timestamp:      signals[circuits.PubInputTimestamp],
	}, circuits.TierProofCurve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("could not build public witness: %w", err)
	}
	if err := groth16.Verify(gproof, v.vk, pubWitness); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return checkBounds(signals, declaredTier)
}

// checkBounds asserts that the proof's first two public signals equal the
// declared tier's bounds exactly, and assembles the verification result.
func checkBounds(signals [circuits.NPubInputs]*big.Int, declaredTier int) (*Verification, error) {
	tier, err := tiers.ByNumber(declaredTier)
	if err != nil {
		return nil, err
	}
	lower, upper := signals[circuits.PubInputLowerBound], signals[circuits.PubInputUpperBound]
	if lower.Cmp(new(big.Int).SetUint64(tier.LowerBound)) != 0 ||
		upper.Cmp(new(big.Int).SetUint64(tier.UpperBound)) != 0 {
		return nil, &BoundMismatchError{Declared: tier, GotLower: lower, GotUpper: upper}
	}
	ts := signals[circuits.PubInputTimestamp]
	if !ts.IsInt64() {
		return nil, fmt.Errorf("timestamp signal out of int64 range")
	}
	return &Verification{
		Tier:      tier,
		Nullifier: new(big.Int).Set(signals[circuits.PubInputNullifier]),
		Timestamp: ts.Int64(),
	}, nil
}

// parseSignals decodes the four decimal public signals, rejecting malformed
// input before any cryptographic work. Signals at or above the scalar field
// modulus are rejected rather than reduced: the witness builder would reduce
// them silently, letting a shifted nullifier verify while the caller records
// the unreduced value.
func parseSignals(proof *prover.Proof) ([circuits.NPubInputs]*big.Int, error) {
	var signals [circuits.NPubInputs]*big.Int
	for i := range signals {
		v, err := proof.Signal(i)
		if err != nil {
			return signals, err
		}
		if v.Cmp(fr.Modulus()) >= 0 {
			return signals, fmt.Errorf("public signal %d exceeds the scalar field modulus", i)
		}
		signals[i] = v
	}
	return signals, nil
}

// gnarkProof rebuilds the backend's native bn254 proof from the portable
// decimal-string representation.
func gnarkProof(p *prover.Proof) (*groth16_bn254.Proof, error) {
	var proof groth16_bn254.Proof
	if _, err := proof.Ar.X.SetString(p.A.X); err != nil {
		return nil, fmt.Errorf("malformed proof A.x: %w", err)
	}
	if _, err := proof.Ar.Y.SetString(p.A.Y); err != nil {
		return nil, fmt.Errorf("malformed proof A.y: %w", err)
	}
	if _, err := proof.Bs.X.A0.SetString(p.B.X[0]); err != nil {
		return nil, fmt.Errorf("malformed proof B.x.c0: %w", err)
	}
	if _, err := proof.Bs.X.A1.SetString(p.B.X[1]); err != nil {
		return nil, fmt.Errorf("malformed proof B.x.c1: %w", err)
	}
	if _, err := proof.Bs.Y.A0.SetString(p.B.Y[0]); err != nil {
		return nil, fmt.Errorf("malformed proof B.y.c0: %w", err)
	}
	if _, err := proof.Bs.Y.A1.SetString(p.B.Y[1]); err != nil {
		return nil, fmt.Errorf("malformed proof B.y.c1: %w", err)
	}
	if _, err := proof.Krs.X.SetString(p.C.X); err != nil {
		return nil, fmt.Errorf("malformed proof C.x: %w", err)
	}
	if _, err := proof.Krs.Y.SetString(p.C.Y); err != nil {
		return nil, fmt.Errorf("malformed proof C.y: %w", err)
	}
	return &proof, nil
}
