package api

import (
	"go.vocdoni.io/dvote/types"

	"github.com/proofoflove/zktier/ledger"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/tiers"
)

// ProofRequest is the user request to generate a tier proof. Balances are the
// three snapshot balances in USD cents, oldest last; they never leave the
// server and are never logged. Addresses and Secret feed the nullifier
// derivation. A zero Timestamp means "now".
type ProofRequest struct {
	Balances  [3]uint64 `json:"balances"`
	Addresses []string  `json:"addresses"`
	Secret    string    `json:"secret"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// ProofResponse carries the generated proof artifact plus the resolved tier
// metadata.
type ProofResponse struct {
	Proof          *prover.Proof `json:"proof"`
	Tier           int           `json:"tier"`
	TierLabel      string        `json:"tierLabel"`
	TierLowerBound uint64        `json:"tierLowerBound"`
	TierUpperBound uint64        `json:"tierUpperBound"`
	Nullifier      string        `json:"nullifier"`
	Timestamp      int64         `json:"timestamp"`
}

// VerifyRequest asks for off-chain verification of a proof against a declared
// tier number.
type VerifyRequest struct {
	Proof *prover.Proof `json:"proof"`
	Tier  int           `json:"tier"`
}

// VerifyResponse is the outcome of a successful off-chain verification.
type VerifyResponse struct {
	Valid     bool   `json:"valid"`
	Tier      int    `json:"tier"`
	TierLabel string `json:"tierLabel"`
	Nullifier string `json:"nullifier"`
	Timestamp int64  `json:"timestamp"`
}

// CredentialSubmission submits a proof to the credential ledger for the
// identity in the URL. The server encodes the proof into the on-chain wire
// format before the pairing check.
type CredentialSubmission struct {
	Proof *prover.Proof `json:"proof"`
}

// CredentialResponse is a badge record as exposed by the API.
type CredentialResponse struct {
	Identity       types.HexBytes `json:"identity"`
	BadgeAddress   types.HexBytes `json:"badgeAddress"`
	Tier           uint8          `json:"tier"`
	TierLabel      string         `json:"tierLabel"`
	TierLowerBound uint64         `json:"tierLowerBound"`
	TierUpperBound uint64         `json:"tierUpperBound"`
	Nullifier      types.HexBytes `json:"nullifier"`
	VerifiedAt     int64          `json:"verifiedAt"`
	ExpiresAt      int64          `json:"expiresAt"`
}

// credentialResponse assembles the API view of a stored badge.
func credentialResponse(id ledger.Identity, badge *ledger.TierBadge) *CredentialResponse {
	addr, _ := ledger.DeriveBadgeAddress(id)
	label := ""
	if t, err := tiers.ByNumber(int(badge.Tier)); err == nil {
		label = t.Label
	}
	return &CredentialResponse{
		Identity:       id[:],
		BadgeAddress:   addr[:],
		Tier:           badge.Tier,
		TierLabel:      label,
		TierLowerBound: badge.TierLowerBound,
		TierUpperBound: badge.TierUpperBound,
		Nullifier:      badge.Nullifier[:],
		VerifiedAt:     badge.VerifiedAt,
		ExpiresAt:      badge.ExpiresAt,
	}
}

// TierInfo is one row of the public tier table.
type TierInfo struct {
	Number     int    `json:"number"`
	Label      string `json:"label"`
	LowerBound uint64 `json:"lowerBound"`
	UpperBound uint64 `json:"upperBound"`
	Range      string `json:"range"`
}
