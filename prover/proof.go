// Package prover orchestrates tier proof generation: it computes the floor
// average host-side, resolves the tier, builds the circuit inputs and invokes
// a Groth16 proving backend. Two backends exist: the native gnark prover and
// a circom-artifact prover fed by externally compiled witness/zkey files.
package prover

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/tiers"
)

// G1Point is an affine point of the pairing curve's first source group, with
// coordinates as decimal-string field elements.
type G1Point struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// G2Point is an affine point of the second source group. Each coordinate is
// a pair (c0, c1) in the quadratic extension field, stored in that order.
type G2Point struct {
	X [2]string `json:"x"`
	Y [2]string `json:"y"`
}

// Proof is the portable tier proof artifact: the three Groth16 curve points
// plus the public signals in wire order. It is immutable once produced and
// carries no replay protection by itself.
type Proof struct {
	A             G1Point                     `json:"a"`
	B             G2Point                     `json:"b"`
	C             G1Point                     `json:"c"`
	PublicSignals [circuits.NPubInputs]string `json:"publicSignals"`
}

// Result pairs a proof with the tier metadata and the timestamp that was
// actually bound into it.
type Result struct {
	Proof     *Proof     `json:"proof"`
	Tier      tiers.Tier `json:"tier"`
	Timestamp int64      `json:"timestamp"`
}

// Signal returns the public signal at the given wire index as a big.Int.
func (p *Proof) Signal(idx int) (*big.Int, error) {
	if idx < 0 || idx >= circuits.NPubInputs {
		return nil, fmt.Errorf("public signal index %d out of range", idx)
	}
	v, ok := new(big.Int).SetString(p.PublicSignals[idx], 10)
	if !ok {
		return nil, fmt.Errorf("public signal %d is not a decimal number: %q", idx, p.PublicSignals[idx])
	}
	return v, nil
}

// circomProofJSON mirrors the snarkjs proof layout, with the projective
// third coordinate snarkjs emits.
type circomProofJSON struct {
	PiA      [3]string    `json:"pi_a"`
	PiB      [3][2]string `json:"pi_b"`
	PiC      [3]string    `json:"pi_c"`
	Protocol string       `json:"protocol"`
}

// CircomJSON serializes the proof points in snarkjs format, as consumed by
// the circom2gnark parser.
func (p *Proof) CircomJSON() ([]byte, error) {
	return json.Marshal(circomProofJSON{
		PiA:      [3]string{p.A.X, p.A.Y, "1"},
		PiB:      [3][2]string{{p.B.X[0], p.B.X[1]}, {p.B.Y[0], p.B.Y[1]}, {"1", "0"}},
		PiC:      [3]string{p.C.X, p.C.Y, "1"},
		Protocol: "groth16",
	})
}

// PublicSignalsJSON serializes the public signals in snarkjs format.
func (p *Proof) PublicSignalsJSON() ([]byte, error) {
	return json.Marshal(p.PublicSignals[:])
}
