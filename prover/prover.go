package prover

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/circuits/wealthtier"
	"github.com/proofoflove/zktier/snapshot"
	"github.com/proofoflove/zktier/tiers"
)

// Generator produces tier proofs with the native gnark Groth16 backend. The
// constraint system and proving key are loaded once; Prove calls are safe to
// run concurrently since gnark proving does not mutate the key material.
type Generator struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
}

// NewGenerator loads the compiled constraint system and the proving key from
// files. Both must come from the same compilation of the tier circuit; a
// mismatch surfaces as a proving failure, not statically.
func NewGenerator(csPath, pkPath string) (*Generator, error) {
	cs, err := circuits.LoadConstraintSystem(csPath)
	if err != nil {
		return nil, fmt.Errorf("could not load constraint system: %w", err)
	}
	pk, err := circuits.LoadProvingKey(pkPath)
	if err != nil {
		return nil, fmt.Errorf("could not load proving key: %w", err)
	}
	return &Generator{cs: cs, pk: pk}, nil
}

// NewGeneratorFromSetup wraps an already compiled system and proving key.
func NewGeneratorFromSetup(cs constraint.ConstraintSystem, pk groth16.ProvingKey) *Generator {
	return &Generator{cs: cs, pk: pk}
}

// Generate builds and proves one tier statement. A zero timestamp means
// "now". It returns the proof artifact with the tier metadata, or an error
// if the witness does not satisfy the circuit (there is no such thing as a
// proof of a false statement). Balances are never logged.
func (g *Generator) Generate(ctx context.Context, balances snapshot.BalanceTriple,
	nullif *big.Int, timestamp int64,
) (*Result, error) {
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	inputs, err := wealthtier.NewCircuitInputs(balances, nullif, timestamp)
	if err != nil {
		return nil, err
	}
	// The displayed tier must be the tier the circuit accepts: both derive
	// from the same floor average, re-checked here against the table.
	if tier, err := tiers.ForAverage(balances.FloorAverage()); err != nil || tier != inputs.Tier {
		return nil, fmt.Errorf("tier lookup mismatch for computed average")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	witness, err := frontend.NewWitness(inputs.Assignment(), circuits.TierProofCurve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("could not build witness: %w", err)
	}
	startTime := time.Now()
	proof, err := groth16.Prove(g.cs, g.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	log.Debugw("tier proof generated",
		"tier", inputs.Tier.Number,
		"took", time.Since(startTime).String())

	artifact, err := proofFromGnark(proof, inputs.PublicSignals())
	if err != nil {
		return nil, err
	}
	return &Result{Proof: artifact, Tier: inputs.Tier, Timestamp: timestamp}, nil
}

// proofFromGnark converts the backend's native bn254 proof into the portable
// decimal-string representation.
func proofFromGnark(proof groth16.Proof, pubSignals []string) (*Proof, error) {
	p, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("unexpected proof type %T", proof)
	}
	if len(pubSignals) != circuits.NPubInputs {
		return nil, fmt.Errorf("expected %d public signals, got %d", circuits.NPubInputs, len(pubSignals))
	}
	artifact := &Proof{
		A: G1Point{X: p.Ar.X.String(), Y: p.Ar.Y.String()},
		B: G2Point{
			X: [2]string{p.Bs.X.A0.String(), p.Bs.X.A1.String()},
			Y: [2]string{p.Bs.Y.A0.String(), p.Bs.Y.A1.String()},
		},
		C: G1Point{X: p.Krs.X.String(), Y: p.Krs.Y.String()},
	}
	copy(artifact.PublicSignals[:], pubSignals)
	return artifact, nil
}
