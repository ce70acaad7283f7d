// Package encoder transcodes a tier proof from the prover's native
// representation (decimal-string field elements) into the fixed-width
// big-endian byte layout the on-chain pairing-check verifier consumes:
//
//   - every field element becomes exactly 32 bytes, most significant first
//   - the G1 point A is submitted with its y coordinate negated, because the
//     on-chain verification equation pairs against -A
//   - the G2 point B swaps each extension-field coordinate pair, a
//     serialization convention mismatch between the two ecosystems
//
// Encoding is pure and deterministic; it never validates proof correctness.
package encoder

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/prover"
)

// Byte widths of the on-chain proof layout.
const (
	FieldSize = circuits.SerializedFieldSize
	G1Size    = 2 * FieldSize
	G2Size    = 4 * FieldSize
)

// EncodedProof is the byte layout accepted by the ledger program's
// verify_and_store entry point.
type EncodedProof struct {
	A            [G1Size]byte
	B            [G2Size]byte
	C            [G1Size]byte
	PublicInputs [circuits.NPubInputs][FieldSize]byte
}

// Encode transcodes a complete proof artifact.
func Encode(proof *prover.Proof) (*EncodedProof, error) {
	if proof == nil {
		return nil, fmt.Errorf("nil proof")
	}
	out := &EncodedProof{}
	var err error
	if out.A, err = EncodeA(proof.A); err != nil {
		return nil, fmt.Errorf("proof A: %w", err)
	}
	if out.B, err = EncodeB(proof.B); err != nil {
		return nil, fmt.Errorf("proof B: %w", err)
	}
	if out.C, err = EncodeC(proof.C); err != nil {
		return nil, fmt.Errorf("proof C: %w", err)
	}
	if out.PublicInputs, err = EncodeSignals(proof.PublicSignals); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeA encodes the G1 point A with its y coordinate negated modulo the
// base field (zero stays zero).
func EncodeA(p prover.G1Point) ([G1Size]byte, error) {
	var out [G1Size]byte
	x, err := baseFieldElement(p.X)
	if err != nil {
		return out, fmt.Errorf("x: %w", err)
	}
	y, err := baseFieldElement(p.Y)
	if err != nil {
		return out, fmt.Errorf("y: %w", err)
	}
	if y.Sign() != 0 {
		y.Sub(fp.Modulus(), y)
	}
	x.FillBytes(out[:FieldSize])
	y.FillBytes(out[FieldSize:])
	return out, nil
}

// EncodeC encodes the G1 point C as x then y, unmodified.
func EncodeC(p prover.G1Point) ([G1Size]byte, error) {
	var out [G1Size]byte
	x, err := baseFieldElement(p.X)
	if err != nil {
		return out, fmt.Errorf("x: %w", err)
	}
	y, err := baseFieldElement(p.Y)
	if err != nil {
		return out, fmt.Errorf("y: %w", err)
	}
	x.FillBytes(out[:FieldSize])
	y.FillBytes(out[FieldSize:])
	return out, nil
}

// EncodeB encodes the G2 point B with the coordinate pairs swapped relative
// to the source representation: x.c1, x.c0, y.c1, y.c0. Getting this wrong
// does not crash anything; verification just fails on plausible-looking
// bytes.
func EncodeB(p prover.G2Point) ([G2Size]byte, error) {
	var out [G2Size]byte
	for i, coord := range []string{p.X[1], p.X[0], p.Y[1], p.Y[0]} {
		v, err := baseFieldElement(coord)
		if err != nil {
			return out, fmt.Errorf("coordinate %d: %w", i, err)
		}
		v.FillBytes(out[i*FieldSize : (i+1)*FieldSize])
	}
	return out, nil
}

// EncodeSignals encodes the four public signals in wire order.
func EncodeSignals(signals [circuits.NPubInputs]string) ([circuits.NPubInputs][FieldSize]byte, error) {
	var out [circuits.NPubInputs][FieldSize]byte
	for i, s := range signals {
		v, err := parseDecimal(s)
		if err != nil {
			return out, fmt.Errorf("public signal %d: %w", i, err)
		}
		if v.Cmp(fr.Modulus()) >= 0 {
			return out, fmt.Errorf("public signal %d exceeds the scalar field modulus", i)
		}
		v.FillBytes(out[i][:])
	}
	return out, nil
}

func baseFieldElement(s string) (*big.Int, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return nil, err
	}
	if v.Cmp(fp.Modulus()) >= 0 {
		return nil, fmt.Errorf("value exceeds the base field modulus")
	}
	return v, nil
}

func parseDecimal(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("not an unsigned decimal number: %q", s)
	}
	return v, nil
}
