// Package ledger implements the credential ledger program: the on-chain
// component that verifies an encoded tier proof with a pairing check and
// persists the result as a per-user badge record at a deterministic derived
// address. Every entry point is atomic over the backing store and touches
// only the calling user's record.
package ledger

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/tiers"
)

// BadgeValiditySeconds is the badge validity window: 30 days.
const BadgeValiditySeconds = 30 * 24 * 60 * 60

// MaxProofAgeSeconds is the maximum age of a proof timestamp at submission
// time: 10 minutes.
const MaxProofAgeSeconds = 10 * 60

// badgePrefix keys the badge records in the backing store.
var badgePrefix = []byte("b/")

// Program is the credential ledger program instance.
type Program struct {
	db  db.Database
	vk  *VerifyingKey
	now func() time.Time
}

// Option configures a Program.
type Option func(*Program)

// WithClock replaces the ledger clock, used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Program) { p.now = now }
}

// New creates a program around a backing store and an embedded verification
// key. It fails if the program's own tier match table has diverged from the
// canonical one: the table is duplicated across the circuit host code, the
// verifier and this program, and silent divergence is a critical bug class.
func New(database db.Database, vk *VerifyingKey, opts ...Option) (*Program, error) {
	if database == nil {
		return nil, fmt.Errorf("nil database")
	}
	if vk == nil {
		return nil, fmt.Errorf("nil verification key")
	}
	if err := checkTierTableConsistency(); err != nil {
		return nil, err
	}
	p := &Program{db: database, vk: vk, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// matchTier is the program's own embedded copy of the tier table. It is
// deliberately independent from the tiers package: the on-chain build cannot
// share code with the off-chain one, so the duplication is checked at
// construction instead.
func matchTier(lower, upper uint64) (uint8, bool) {
	switch {
	case lower == 0 && upper == 100_000:
		return 1, true // Seed: < $1K
	case lower == 100_000 && upper == 1_000_000:
		return 2, true // Sprout: $1K - $10K
	case lower == 1_000_000 && upper == 5_000_000:
		return 3, true // Tree: $10K - $50K
	case lower == 5_000_000 && upper == 25_000_000:
		return 4, true // Mountain: $50K - $250K
	case lower == 25_000_000 && upper == 100_000_000:
		return 5, true // Ocean: $250K - $1M
	case lower == 100_000_000 && upper == 500_000_000:
		return 6, true // Moon: $1M - $5M
	case lower == 500_000_000 && upper == 10_000_000_000_000_000:
		return 7, true // Sun: $5M+
	}
	return 0, false
}

func checkTierTableConsistency() error {
	for _, t := range tiers.Table() {
		n, ok := matchTier(t.LowerBound, t.UpperBound)
		if !ok || int(n) != t.Number {
			return fmt.Errorf("embedded tier table diverged from canonical table at tier %d", t.Number)
		}
	}
	return nil
}

// VerifyAndStoreTier verifies an encoded Groth16 proof of wealth tier and
// stores the result as the caller's badge record. The record is created if
// absent and overwritten in place otherwise; re-verification always
// refreshes the timestamps. proofA must arrive with its y coordinate already
// negated.
func (p *Program) VerifyAndStoreTier(user Identity,
	proofA [64]byte, proofB [128]byte, proofC [64]byte,
	publicInputs [circuits.NPubInputs][32]byte,
) (*TierBadge, error) {
	// 1. verify the proof
	if err := p.vk.verifyProof(proofA, proofB, proofC, publicInputs); err != nil {
		log.Debugw("tier proof rejected", "user", user.String(), "error", err.Error())
		return nil, ErrProofVerificationFailed
	}

	// 2. decode the public signals
	tierLower, err := decodeU64Signal(publicInputs[circuits.PubInputLowerBound])
	if err != nil {
		return nil, err
	}
	tierUpper, err := decodeU64Signal(publicInputs[circuits.PubInputUpperBound])
	if err != nil {
		return nil, err
	}
	timestamp, err := decodeU64Signal(publicInputs[circuits.PubInputTimestamp])
	if err != nil {
		return nil, err
	}

	// 3. the bounds must match a known tier exactly
	tier, ok := matchTier(tierLower, tierUpper)
	if !ok {
		return nil, ErrInvalidTierBounds
	}

	// 4. freshness: stale proofs cannot mint a badge
	now := p.now().Unix()
	if now-int64(timestamp) > MaxProofAgeSeconds {
		return nil, ErrProofTooOld
	}

	// 5. write the badge record
	addr, bump := DeriveBadgeAddress(user)
	badge := &TierBadge{
		Owner:          user,
		Tier:           tier,
		TierLowerBound: tierLower,
		TierUpperBound: tierUpper,
		Nullifier:      publicInputs[circuits.PubInputNullifier],
		VerifiedAt:     int64(timestamp),
		ExpiresAt:      int64(timestamp) + BadgeValiditySeconds,
		Bump:           bump,
	}
	if err := p.writeBadge(addr, badge); err != nil {
		return nil, err
	}
	log.Infow("tier badge stored",
		"user", user.String(),
		"tier", tier,
		"lowerBound", tierLower,
		"upperBound", tierUpper,
		"expiresAt", badge.ExpiresAt)
	return badge, nil
}

// RevokeExpiredTier deletes the caller's badge record. It is only valid once
// the record's expiry has passed; revoking an active badge would let a user
// re-claim a fresh validity window early.
func (p *Program) RevokeExpiredTier(user Identity) error {
	addr, _ := DeriveBadgeAddress(user)
	badge, err := p.readBadge(addr)
	if err != nil {
		return err
	}
	if badge.Owner != user {
		return ErrUnauthorized
	}
	if p.now().Unix() <= badge.ExpiresAt {
		return ErrBadgeNotExpired
	}
	wTx := prefixeddb.NewPrefixedWriteTx(p.db.WriteTx(), badgePrefix)
	defer wTx.Discard()
	if err := wTx.Delete(addr[:]); err != nil {
		return err
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	log.Infow("tier badge revoked", "user", user.String())
	return nil
}

// Badge returns the caller's badge record, or ErrBadgeNotFound.
func (p *Program) Badge(user Identity) (*TierBadge, error) {
	addr, _ := DeriveBadgeAddress(user)
	return p.readBadge(addr)
}

func (p *Program) writeBadge(addr [32]byte, badge *TierBadge) error {
	data, err := badge.MarshalBinary()
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(p.db.WriteTx(), badgePrefix)
	defer wTx.Discard()
	if err := wTx.Set(addr[:], data); err != nil {
		return err
	}
	return wTx.Commit()
}

func (p *Program) readBadge(addr [32]byte) (*TierBadge, error) {
	rTx := prefixeddb.NewPrefixedReader(p.db, badgePrefix)
	data, err := rTx.Get(addr[:])
	if err != nil {
		return nil, ErrBadgeNotFound
	}
	badge := &TierBadge{}
	if err := badge.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return badge, nil
}

// decodeU64Signal reads a 32-byte big-endian public input that must fit in
// 64 bits; anything in the high 24 bytes means a malformed or hostile input.
func decodeU64Signal(b [32]byte) (uint64, error) {
	for _, v := range b[:24] {
		if v != 0 {
			return 0, ErrMalformedPublicInput
		}
	}
	return binary.BigEndian.Uint64(b[24:]), nil
}
