package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/proofoflove/zktier/util"
)

// Identity is a 32-byte user identity key (the signing party of a ledger
// transaction).
type Identity [32]byte

// IdentityFromHex parses a 64-character hex identity, with or without a 0x
// prefix.
func IdentityFromHex(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(util.TrimHex(s))
	if err != nil {
		return id, fmt.Errorf("malformed identity: %w", err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("identity must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// badgeSeed is the fixed namespace label of the badge account derivation.
const badgeSeed = "tier_badge"

// programID namespaces every derived address to this program, so the same
// owner identity maps to unrelated addresses under different programs.
var programID = sha256.Sum256([]byte("zktier/credential-ledger/v1"))

// DeriveBadgeAddress returns the deterministic badge account address for an
// owner, plus the derivation bump recorded in the account. One address
// exists per owner under this scheme, so a user cannot hold multiple badge
// records. The bump is fixed in this emulation but kept in the ABI for
// derivation-scheme stability.
func DeriveBadgeAddress(owner Identity) (addr [32]byte, bump uint8) {
	bump = 255
	h := sha256.New()
	h.Write([]byte(badgeSeed))
	h.Write(owner[:])
	h.Write([]byte{bump})
	h.Write(programID[:])
	copy(addr[:], h.Sum(nil))
	return addr, bump
}
