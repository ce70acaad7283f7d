package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/nullifier"
	"github.com/proofoflove/zktier/snapshot"
	"github.com/proofoflove/zktier/tiers"
	"github.com/proofoflove/zktier/verifier"
)

// tierTable returns the public tier table
// GET /tiers
func (a *API) tierTable(w http.ResponseWriter, _ *http.Request) {
	table := tiers.Table()
	out := make([]*TierInfo, 0, len(table))
	for _, t := range table {
		out = append(out, &TierInfo{
			Number:     t.Number,
			Label:      t.Label,
			LowerBound: t.LowerBound,
			UpperBound: t.UpperBound,
			Range:      t.String(),
		})
	}
	httpWriteJSON(w, out)
}

// snapshotSchedule returns the three snapshot points a statement anchored at
// the current time covers
// GET /snapshots
func (a *API) snapshotSchedule(w http.ResponseWriter, _ *http.Request) {
	schedule := snapshot.Schedule(time.Now())
	httpWriteJSON(w, schedule[:])
}

// newProof generates a tier proof for the submitted balance snapshots
// POST /proofs
func (a *API) newProof(w http.ResponseWriter, r *http.Request) {
	req := &ProofRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	balances := snapshot.BalanceTriple(req.Balances)
	if err := balances.Validate(); err != nil {
		ErrInvalidBalances.WithErr(err).Write(w)
		return
	}
	nullif, err := nullifier.Derive(req.Addresses, req.Secret)
	if err != nil {
		ErrInvalidNullifier.WithErr(err).Write(w)
		return
	}

	res, err := a.prover.Generate(r.Context(), balances, nullif, req.Timestamp)
	if err != nil {
		ErrProofGenerationFailed.WithErr(err).Write(w)
		return
	}

	log.Infow("tier proof generated", "tier", res.Tier.Number, "timestamp", res.Timestamp)
	httpWriteJSON(w, &ProofResponse{
		Proof:          res.Proof,
		Tier:           res.Tier.Number,
		TierLabel:      res.Tier.Label,
		TierLowerBound: res.Tier.LowerBound,
		TierUpperBound: res.Tier.UpperBound,
		Nullifier:      nullif.String(),
		Timestamp:      res.Timestamp,
	})
}

// verifyProof runs the off-chain verification of a proof against a declared
// tier number
// POST /proofs/verify
func (a *API) verifyProof(w http.ResponseWriter, r *http.Request) {
	req := &VerifyRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Proof == nil {
		ErrMalformedBody.With("missing proof").Write(w)
		return
	}
	if req.Tier < 1 || req.Tier > tiers.NumTiers {
		ErrInvalidTierNumber.Withf("%d", req.Tier).Write(w)
		return
	}

	out, err := a.verifier.Verify(req.Proof, req.Tier)
	if err != nil {
		var mismatch *verifier.BoundMismatchError
		switch {
		case errors.As(err, &mismatch):
			ErrProofRejected.WithErr(mismatch).Write(w)
		case errors.Is(err, verifier.ErrInvalidProof):
			ErrProofRejected.Write(w)
		default:
			ErrMalformedBody.WithErr(err).Write(w)
		}
		return
	}
	httpWriteJSON(w, &VerifyResponse{
		Valid:     true,
		Tier:      out.Tier.Number,
		TierLabel: out.Tier.Label,
		Nullifier: out.Nullifier.String(),
		Timestamp: out.Timestamp,
	})
}
