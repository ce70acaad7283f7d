package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
)

// TierProofCurve is the curve the tier circuit is compiled over. BN254 is the
// only curve the on-chain pairing precompile supports, so it is fixed.
var TierProofCurve = ecc.BN254
