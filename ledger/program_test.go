package ledger_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/circuits/wealthtier"
	"github.com/proofoflove/zktier/encoder"
	"github.com/proofoflove/zktier/ledger"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/snapshot"
)

var (
	setupOnce sync.Once
	testCS    constraint.ConstraintSystem
	testPK    groth16.ProvingKey
	testVK    *ledger.VerifyingKey
	setupErr  error
)

// testSetup compiles the tier circuit and runs an insecure Groth16 setup
// once for the whole package.
func testSetup(t *testing.T) (constraint.ConstraintSystem, groth16.ProvingKey, *ledger.VerifyingKey) {
	t.Helper()
	setupOnce.Do(func() {
		testCS, setupErr = wealthtier.Compile()
		if setupErr != nil {
			return
		}
		var vk groth16.VerifyingKey
		testPK, vk, setupErr = wealthtier.Setup(testCS)
		if setupErr != nil {
			return
		}
		testVK, setupErr = ledger.NewVerifyingKey(vk)
	})
	if setupErr != nil {
		t.Fatal(setupErr)
	}
	return testCS, testPK, testVK
}

type fakeClock struct {
	mu sync.Mutex
	at time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.at
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.at = f.at.Add(d)
}

func newTestProgram(t *testing.T, clk *fakeClock) *ledger.Program {
	t.Helper()
	_, _, vk := testSetup(t)
	prg, err := ledger.New(metadb.NewTest(t), vk, ledger.WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	return prg
}

// encodedProof proves the given balances and encodes the result for
// submission.
func encodedProof(t *testing.T, balances snapshot.BalanceTriple, nullif *big.Int, ts int64,
) ([64]byte, [128]byte, [64]byte, [4][32]byte, int) {
	t.Helper()
	cs, pk, _ := testSetup(t)
	gen := prover.NewGeneratorFromSetup(cs, pk)
	res, err := gen.Generate(context.Background(), balances, nullif, ts)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := encoder.Encode(res.Proof)
	if err != nil {
		t.Fatal(err)
	}
	return enc.A, enc.B, enc.C, enc.PublicInputs, res.Tier.Number
}

func identity(b byte) ledger.Identity {
	var id ledger.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func TestVerifyAndStoreTier(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)

	// the flash-loan dip scenario: [$100K, $30K, $120K] cents averages to
	// $83,333.33, tier 4, despite the mid-period dip
	balances := snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000}
	a, b, cp, inputs, tierNum := encodedProof(t, balances, big.NewInt(987654321), now.Unix())
	c.Assert(tierNum, qt.Equals, 4)

	user := identity(1)
	badge, err := prg.VerifyAndStoreTier(user, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(badge.Tier, qt.Equals, uint8(4))
	c.Assert(badge.TierLowerBound, qt.Equals, uint64(5_000_000))
	c.Assert(badge.TierUpperBound, qt.Equals, uint64(25_000_000))
	c.Assert(badge.Owner, qt.Equals, user)
	c.Assert(badge.VerifiedAt, qt.Equals, now.Unix())
	c.Assert(badge.ExpiresAt, qt.Equals, now.Unix()+int64(ledger.BadgeValiditySeconds))

	stored, err := prg.Badge(user)
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.DeepEquals, badge)
}

func TestTamperedProofRejected(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)

	balances := snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000}
	a, b, cp, inputs, _ := encodedProof(t, balances, big.NewInt(42), now.Unix())

	// flip the claimed upper bound to tier 5's: the pairing no longer holds
	var tampered [4][32]byte = inputs
	tampered[circuits.PubInputUpperBound] = [32]byte{}
	tampered[circuits.PubInputUpperBound][28] = 0x05
	tampered[circuits.PubInputUpperBound][29] = 0xf5
	tampered[circuits.PubInputUpperBound][30] = 0xe1
	_, err := prg.VerifyAndStoreTier(identity(2), a, b, cp, tampered)
	c.Assert(err, qt.Equals, ledger.ErrProofVerificationFailed)

	// a corrupted proof point fails as well, and no badge is written
	cp[5] ^= 0xff
	_, err = prg.VerifyAndStoreTier(identity(2), a, b, cp, inputs)
	c.Assert(err, qt.Equals, ledger.ErrProofVerificationFailed)
	_, err = prg.Badge(identity(2))
	c.Assert(err, qt.Equals, ledger.ErrBadgeNotFound)
}

func TestInvalidTierBounds(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)
	cs, pk, _ := testSetup(t)

	// a structurally valid proof for bounds that are not a tier: claim the
	// window [avg, avg+1)
	assignment := &wealthtier.Circuit{
		TierLowerBound: 8_333_333,
		TierUpperBound: 8_333_334,
		Nullifier:      7,
		Timestamp:      now.Unix(),
		Balance1:       10_000_000,
		Balance2:       3_000_000,
		Balance3:       12_000_000,
	}
	witness, err := frontend.NewWitness(assignment, circuits.TierProofCurve.ScalarField())
	c.Assert(err, qt.IsNil)
	gproof, err := groth16.Prove(cs, pk, witness)
	c.Assert(err, qt.IsNil)
	bp := gproof.(*groth16_bn254.Proof)

	artifact := &prover.Proof{
		A: prover.G1Point{X: bp.Ar.X.String(), Y: bp.Ar.Y.String()},
		B: prover.G2Point{
			X: [2]string{bp.Bs.X.A0.String(), bp.Bs.X.A1.String()},
			Y: [2]string{bp.Bs.Y.A0.String(), bp.Bs.Y.A1.String()},
		},
		C: prover.G1Point{X: bp.Krs.X.String(), Y: bp.Krs.Y.String()},
		PublicSignals: [4]string{
			"8333333", "8333334", "7", "1700000000",
		},
	}
	enc, err := encoder.Encode(artifact)
	c.Assert(err, qt.IsNil)

	_, err = prg.VerifyAndStoreTier(identity(3), enc.A, enc.B, enc.C, enc.PublicInputs)
	c.Assert(err, qt.Equals, ledger.ErrInvalidTierBounds)
}

func TestReverificationRefresh(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)
	user := identity(4)

	// tier 6 balances: $2M average
	balances := snapshot.BalanceTriple{200_000_000, 200_000_000, 200_000_000}
	a, b, cp, inputs, tierNum := encodedProof(t, balances, big.NewInt(55), now.Unix())
	c.Assert(tierNum, qt.Equals, 6)

	first, err := prg.VerifyAndStoreTier(user, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(first.TierLowerBound, qt.Equals, uint64(100_000_000))
	c.Assert(first.TierUpperBound, qt.Equals, uint64(500_000_000))

	// a week later, re-verify with a fresh proof for the same bounds: the
	// record updates in place and the expiry advances
	clk.Advance(7 * 24 * time.Hour)
	a, b, cp, inputs, _ = encodedProof(t, balances, big.NewInt(55), clk.Now().Unix())
	second, err := prg.VerifyAndStoreTier(user, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)
	c.Assert(second.VerifiedAt, qt.Equals, first.VerifiedAt+7*24*3600)
	c.Assert(second.ExpiresAt > first.ExpiresAt, qt.IsTrue)

	stored, err := prg.Badge(user)
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.DeepEquals, second)
}

func TestPrematureRevocationRejected(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)
	user := identity(5)

	balances := snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000}
	a, b, cp, inputs, _ := encodedProof(t, balances, big.NewInt(9), now.Unix())
	_, err := prg.VerifyAndStoreTier(user, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)

	// immediately after verification, revocation must fail
	c.Assert(prg.RevokeExpiredTier(user), qt.Equals, ledger.ErrBadgeNotExpired)

	// still not expired one second before the window ends
	clk.Advance(time.Duration(ledger.BadgeValiditySeconds)*time.Second - time.Second)
	c.Assert(prg.RevokeExpiredTier(user), qt.Equals, ledger.ErrBadgeNotExpired)

	// past the expiry revocation succeeds and the record is gone
	clk.Advance(2 * time.Second)
	c.Assert(prg.RevokeExpiredTier(user), qt.IsNil)
	_, err = prg.Badge(user)
	c.Assert(err, qt.Equals, ledger.ErrBadgeNotFound)

	// revoking an absent record fails
	c.Assert(prg.RevokeExpiredTier(user), qt.Equals, ledger.ErrBadgeNotFound)
}

func TestMultiUserIsolation(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)

	alice, bob := identity(6), identity(7)

	a, b, cp, inputs, _ := encodedProof(t,
		snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000}, big.NewInt(100), now.Unix())
	_, err := prg.VerifyAndStoreTier(alice, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)

	a, b, cp, inputs, _ = encodedProof(t,
		snapshot.BalanceTriple{200_000_000, 200_000_000, 200_000_000}, big.NewInt(200), now.Unix())
	_, err = prg.VerifyAndStoreTier(bob, a, b, cp, inputs)
	c.Assert(err, qt.IsNil)

	aliceBadge, err := prg.Badge(alice)
	c.Assert(err, qt.IsNil)
	bobBadge, err := prg.Badge(bob)
	c.Assert(err, qt.IsNil)
	c.Assert(aliceBadge.Tier, qt.Equals, uint8(4))
	c.Assert(bobBadge.Tier, qt.Equals, uint8(6))

	// revoking one user's expired badge leaves the other untouched
	clk.Advance(time.Duration(ledger.BadgeValiditySeconds+1) * time.Second)
	c.Assert(prg.RevokeExpiredTier(alice), qt.IsNil)
	bobBadge, err = prg.Badge(bob)
	c.Assert(err, qt.IsNil)
	c.Assert(bobBadge.Tier, qt.Equals, uint8(6))
}

func TestStaleProofRejected(t *testing.T) {
	c := qt.New(t)

	now := time.Unix(1700000000, 0)
	clk := &fakeClock{at: now}
	prg := newTestProgram(t, clk)

	// the proof is eleven minutes old at submission time
	staleTS := now.Add(-11 * time.Minute).Unix()
	a, b, cp, inputs, _ := encodedProof(t,
		snapshot.BalanceTriple{10_000_000, 3_000_000, 12_000_000}, big.NewInt(300), staleTS)
	_, err := prg.VerifyAndStoreTier(identity(8), a, b, cp, inputs)
	c.Assert(err, qt.Equals, ledger.ErrProofTooOld)
}
