package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/proofoflove/zktier/encoder"
	"github.com/proofoflove/zktier/ledger"
)

// urlIdentity parses the identity URL parameter; on failure it writes the
// error response itself and reports false.
func urlIdentity(w http.ResponseWriter, r *http.Request) (ledger.Identity, bool) {
	id, err := ledger.IdentityFromHex(chi.URLParam(r, CredentialURLParam))
	if err != nil {
		ErrMalformedIdentity.WithErr(err).Write(w)
		return ledger.Identity{}, false
	}
	return id, true
}

// credential returns the stored badge record for an identity
// GET /credentials/{identity}
func (a *API) credential(w http.ResponseWriter, r *http.Request) {
	id, ok := urlIdentity(w, r)
	if !ok {
		return
	}
	badge, err := a.ledger.Badge(id)
	if err != nil {
		ErrCredentialNotFound.Write(w)
		return
	}
	httpWriteJSON(w, credentialResponse(id, badge))
}

// submitCredential encodes a proof into the on-chain wire format and submits
// it to the credential ledger program
// POST /credentials/{identity}
func (a *API) submitCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := urlIdentity(w, r)
	if !ok {
		return
	}
	req := &CredentialSubmission{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Proof == nil {
		ErrMalformedBody.With("missing proof").Write(w)
		return
	}
	enc, err := encoder.Encode(req.Proof)
	if err != nil {
		ErrMalformedBody.Withf("could not encode proof: %v", err).Write(w)
		return
	}

	badge, err := a.ledger.VerifyAndStoreTier(id, enc.A, enc.B, enc.C, enc.PublicInputs)
	switch err {
	case nil:
	case ledger.ErrProofVerificationFailed, ledger.ErrInvalidTierBounds:
		ErrProofRejected.WithErr(err).Write(w)
		return
	case ledger.ErrProofTooOld:
		ErrStaleProof.Write(w)
		return
	case ledger.ErrMalformedPublicInput:
		ErrMalformedBody.WithErr(err).Write(w)
		return
	default:
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, credentialResponse(id, badge))
}

// revokeCredential deletes an expired badge record
// DELETE /credentials/{identity}
func (a *API) revokeCredential(w http.ResponseWriter, r *http.Request) {
	id, ok := urlIdentity(w, r)
	if !ok {
		return
	}
	switch err := a.ledger.RevokeExpiredTier(id); err {
	case nil:
		httpWriteOK(w)
	case ledger.ErrBadgeNotFound:
		ErrCredentialNotFound.Write(w)
	case ledger.ErrBadgeNotExpired:
		ErrCredentialNotExpired.Write(w)
	case ledger.ErrUnauthorized:
		ErrMalformedIdentity.WithErr(err).Write(w)
	default:
		ErrGenericInternalServerError.WithErr(err).Write(w)
	}
}
