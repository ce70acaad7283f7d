package verifier

import (
	"fmt"

	"github.com/vocdoni/circom2gnark/parser"

	"github.com/proofoflove/zktier/prover"
)

// VerifyCircom verifies a tier proof against a snarkjs verification key JSON,
// converting the proof to the gnark format first. It applies the same tier
// bound equality check as the native path.
func VerifyCircom(vkey []byte, proof *prover.Proof, declaredTier int) (*Verification, error) {
	signals, err := parseSignals(proof)
	if err != nil {
		return nil, err
	}
	proofJSON, err := proof.CircomJSON()
	if err != nil {
		return nil, err
	}
	pubJSON, err := proof.PublicSignalsJSON()
	if err != nil {
		return nil, err
	}
	// transform to gnark format
	proofData, err := parser.UnmarshalCircomProofJSON(proofJSON)
	if err != nil {
		return nil, err
	}
	pubSignalsData, err := parser.UnmarshalCircomPublicSignalsJSON(pubJSON)
	if err != nil {
		return nil, err
	}
	vkeyData, err := parser.UnmarshalCircomVerificationKeyJSON(vkey)
	if err != nil {
		return nil, err
	}
	gnarkProof, err := parser.ConvertCircomToGnark(proofData, vkeyData, pubSignalsData)
	if err != nil {
		return nil, err
	}
	if ok, err := parser.VerifyProof(gnarkProof); !ok || err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return checkBounds(signals, declaredTier)
}
