package prover

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	rapidprover "github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/witness"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/circuits/wealthtier"
	"github.com/proofoflove/zktier/snapshot"
	"github.com/proofoflove/zktier/tiers"
)

// CircomProver generates tier proofs from externally compiled circom
// artifacts: a wasm witness-generation program and a Groth16 zkey. Both are
// versioned together; feeding a zkey from a different circuit compilation
// fails at proving time.
type CircomProver struct {
	calc *witness.Circom2WitnessCalculator
	zkey []byte
}

// NewCircomProver loads the wasm witness calculator and the proving zkey
// from files.
func NewCircomProver(wasmPath, zkeyPath string) (*CircomProver, error) {
	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("could not read witness wasm: %w", err)
	}
	zkey, err := os.ReadFile(zkeyPath)
	if err != nil {
		return nil, fmt.Errorf("could not read zkey: %w", err)
	}
	calc, err := witness.NewCircom2WitnessCalculator(wasm, true)
	if err != nil {
		return nil, fmt.Errorf("could not instantiate witness calculator: %w", err)
	}
	return &CircomProver{calc: calc, zkey: zkey}, nil
}

// Generate builds the circom witness for one tier statement and proves it
// with the zkey. Semantics match Generator.Generate.
func (p *CircomProver) Generate(ctx context.Context, balances snapshot.BalanceTriple,
	nullif *big.Int, timestamp int64,
) (*Result, error) {
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	inputs, err := wealthtier.NewCircuitInputs(balances, nullif, timestamp)
	if err != nil {
		return nil, err
	}
	if tier, err := tiers.ForAverage(balances.FloorAverage()); err != nil || tier != inputs.Tier {
		return nil, fmt.Errorf("tier lookup mismatch for computed average")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wtns, err := p.calc.CalculateWTNSBin(map[string]any{
		"balance1":       new(big.Int).SetUint64(inputs.Balances[0]),
		"balance2":       new(big.Int).SetUint64(inputs.Balances[1]),
		"balance3":       new(big.Int).SetUint64(inputs.Balances[2]),
		"tierLowerBound": new(big.Int).SetUint64(inputs.Tier.LowerBound),
		"tierUpperBound": new(big.Int).SetUint64(inputs.Tier.UpperBound),
		"nullifier":      inputs.Nullifier,
		"timestamp":      big.NewInt(inputs.Timestamp),
	}, true)
	if err != nil {
		return nil, fmt.Errorf("witness generation failed: %w", err)
	}
	startTime := time.Now()
	zkProof, err := rapidprover.Groth16Prover(p.zkey, wtns)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	log.Debugw("tier proof generated (circom backend)",
		"tier", inputs.Tier.Number,
		"took", time.Since(startTime).String())

	artifact, err := proofFromCircom(zkProof)
	if err != nil {
		return nil, err
	}
	return &Result{Proof: artifact, Tier: inputs.Tier, Timestamp: timestamp}, nil
}

// proofFromCircom converts a snarkjs-shaped proof into the portable artifact.
func proofFromCircom(zk *types.ZKProof) (*Proof, error) {
	if zk == nil || zk.Proof == nil {
		return nil, fmt.Errorf("nil circom proof")
	}
	if len(zk.Proof.A) < 2 || len(zk.Proof.C) < 2 ||
		len(zk.Proof.B) < 2 || len(zk.Proof.B[0]) < 2 || len(zk.Proof.B[1]) < 2 {
		return nil, fmt.Errorf("malformed circom proof points")
	}
	if len(zk.PubSignals) != circuits.NPubInputs {
		return nil, fmt.Errorf("expected %d public signals, got %d", circuits.NPubInputs, len(zk.PubSignals))
	}
	artifact := &Proof{
		A: G1Point{X: zk.Proof.A[0], Y: zk.Proof.A[1]},
		B: G2Point{
			X: [2]string{zk.Proof.B[0][0], zk.Proof.B[0][1]},
			Y: [2]string{zk.Proof.B[1][0], zk.Proof.B[1][1]},
		},
		C: G1Point{X: zk.Proof.C[0], Y: zk.Proof.C[1]},
	}
	copy(artifact.PublicSignals[:], zk.PubSignals)
	return artifact, nil
}
