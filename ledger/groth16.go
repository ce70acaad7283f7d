package ledger

import (
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gnarkgroth16 "github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/proofoflove/zktier/circuits"
)

// VerifyingKey holds the pairing-check parameters embedded into the program.
// IC has one point per public input plus the constant term.
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    [circuits.NPubInputs + 1]bn254.G1Affine
}

// NewVerifyingKey extracts the program parameters from a gnark verification
// key. The key must belong to the tier circuit: any other public input count
// is rejected.
func NewVerifyingKey(vk gnarkgroth16.VerifyingKey) (*VerifyingKey, error) {
	bvk, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected verification key type %T", vk)
	}
	if len(bvk.G1.K) != circuits.NPubInputs+1 {
		return nil, fmt.Errorf("verification key has %d public inputs, want %d",
			len(bvk.G1.K)-1, circuits.NPubInputs)
	}
	out := &VerifyingKey{
		Alpha: bvk.G1.Alpha,
		Beta:  bvk.G2.Beta,
		Gamma: bvk.G2.Gamma,
		Delta: bvk.G2.Delta,
	}
	copy(out.IC[:], bvk.G1.K)
	return out, nil
}

// verifyProof runs the on-chain pairing equation over the encoded proof:
//
//	e(-A, B) · e(alpha, beta) · e(L, gamma) · e(C, delta) == 1
//
// where L folds the public inputs into the IC points. proofA arrives with
// its y coordinate already negated, so it is used as-is.
func (vk *VerifyingKey) verifyProof(proofA [64]byte, proofB [128]byte, proofC [64]byte,
	publicInputs [circuits.NPubInputs][32]byte,
) error {
	negA, err := decodeG1(proofA)
	if err != nil {
		return fmt.Errorf("proof A: %w", err)
	}
	b, err := decodeG2(proofB)
	if err != nil {
		return fmt.Errorf("proof B: %w", err)
	}
	c, err := decodeG1(proofC)
	if err != nil {
		return fmt.Errorf("proof C: %w", err)
	}

	// L = IC[0] + sum_i signals[i] * IC[i+1]
	l := vk.IC[0]
	for i, input := range publicInputs {
		s := new(big.Int).SetBytes(input[:])
		if s.Cmp(fr.Modulus()) >= 0 {
			return fmt.Errorf("public input %d exceeds the scalar field", i)
		}
		var term bn254.G1Affine
		term.ScalarMultiplication(&vk.IC[i+1], s)
		l.Add(&l, &term)
	}

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{*negA, vk.Alpha, l, *c},
		[]bn254.G2Affine{*b, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pairing product is not one")
	}
	return nil
}

// decodeG1 parses an uncompressed big-endian x‖y point and checks it lies on
// the curve.
func decodeG1(raw [64]byte) (*bn254.G1Affine, error) {
	x, err := baseField(raw[:32])
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	y, err := baseField(raw[32:])
	if err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	var p bn254.G1Affine
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("point is not on the curve")
	}
	return &p, nil
}

// decodeG2 parses the swapped-pair layout c1‖c0 per coordinate and checks
// curve and subgroup membership.
func decodeG2(raw [128]byte) (*bn254.G2Affine, error) {
	var coords [4]*big.Int
	for i := range coords {
		v, err := baseField(raw[i*32 : (i+1)*32])
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		coords[i] = v
	}
	var p bn254.G2Affine
	p.X.A1.SetBigInt(coords[0])
	p.X.A0.SetBigInt(coords[1])
	p.Y.A1.SetBigInt(coords[2])
	p.Y.A0.SetBigInt(coords[3])
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("point is not on the curve")
	}
	if !p.IsInSubGroup() {
		return nil, fmt.Errorf("point is not in the correct subgroup")
	}
	return &p, nil
}

func baseField(b []byte) (*big.Int, error) {
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fp.Modulus()) >= 0 {
		return nil, fmt.Errorf("value exceeds the base field modulus")
	}
	return v, nil
}
