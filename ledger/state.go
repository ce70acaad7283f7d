package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// TierBadge is the per-user credential record. Field order and widths are
// part of the persisted binary ABI and must stay stable across upgrades.
type TierBadge struct {
	// Owner is the identity that verified the proof.
	Owner Identity `json:"owner"`
	// Tier is the verified tier number (1-7).
	Tier uint8 `json:"tier"`
	// TierLowerBound is the tier's inclusive lower bound in USD cents.
	TierLowerBound uint64 `json:"tierLowerBound"`
	// TierUpperBound is the tier's exclusive upper bound in USD cents.
	TierUpperBound uint64 `json:"tierUpperBound"`
	// Nullifier is the identity commitment bound into the proof.
	Nullifier [32]byte `json:"nullifier"`
	// VerifiedAt is the proof timestamp the badge was issued against.
	VerifiedAt int64 `json:"verifiedAt"`
	// ExpiresAt is VerifiedAt plus the fixed validity window.
	ExpiresAt int64 `json:"expiresAt"`
	// Bump is the address-derivation bump recorded at creation.
	Bump uint8 `json:"bump"`
}

// badgeDiscriminator versions the account layout: the first 8 bytes of
// sha256("account:TierBadge").
var badgeDiscriminator = func() [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("account:TierBadge"))
	copy(d[:], sum[:8])
	return d
}()

// badgeAccountSize is the serialized size: discriminator + fields.
const badgeAccountSize = 8 + 32 + 1 + 8 + 8 + 32 + 8 + 8 + 1

// MarshalBinary serializes the badge in the stable account layout:
// discriminator, owner, tier, bounds, nullifier, timestamps, bump, with
// little-endian integers.
func (b *TierBadge) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, badgeAccountSize)
	out = append(out, badgeDiscriminator[:]...)
	out = append(out, b.Owner[:]...)
	out = append(out, b.Tier)
	out = binary.LittleEndian.AppendUint64(out, b.TierLowerBound)
	out = binary.LittleEndian.AppendUint64(out, b.TierUpperBound)
	out = append(out, b.Nullifier[:]...)
	out = binary.LittleEndian.AppendUint64(out, uint64(b.VerifiedAt))
	out = binary.LittleEndian.AppendUint64(out, uint64(b.ExpiresAt))
	out = append(out, b.Bump)
	return out, nil
}

// UnmarshalBinary parses the stable account layout.
func (b *TierBadge) UnmarshalBinary(data []byte) error {
	if len(data) != badgeAccountSize {
		return fmt.Errorf("badge account must be %d bytes, got %d", badgeAccountSize, len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	if disc != badgeDiscriminator {
		return fmt.Errorf("unknown badge account discriminator %x", disc)
	}
	off := 8
	copy(b.Owner[:], data[off:off+32])
	off += 32
	b.Tier = data[off]
	off++
	b.TierLowerBound = binary.LittleEndian.Uint64(data[off:])
	off += 8
	b.TierUpperBound = binary.LittleEndian.Uint64(data[off:])
	off += 8
	copy(b.Nullifier[:], data[off:off+32])
	off += 32
	b.VerifiedAt = int64(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	b.ExpiresAt = int64(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	b.Bump = data[off]
	return nil
}
