package wealthtier

import (
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/proofoflove/zktier/circuits"
)

// Compile builds the constraint system of the tier circuit over the
// TierProofCurve scalar field.
func Compile() (constraint.ConstraintSystem, error) {
	return frontend.Compile(circuits.TierProofCurve.ScalarField(), r1cs.NewBuilder, &Circuit{})
}

// Setup runs the (insecure, single-party) Groth16 setup for the compiled
// circuit. Production keys come from an external ceremony; this exists for
// tests and local development.
func Setup(cs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	return groth16.Setup(cs)
}
