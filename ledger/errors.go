package ledger

import "fmt"

// ProgramError is a stable, numbered program error. Codes mirror the
// on-chain error table and must never be renumbered, only appended.
type ProgramError struct {
	Code int
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("program error %d: %s", e.Code, e.Msg)
}

var (
	// ErrProofVerificationFailed is returned when the pairing check fails.
	ErrProofVerificationFailed = &ProgramError{Code: 6000, Msg: "groth16 proof verification failed"}
	// ErrInvalidTierBounds is returned when the proof's bounds do not match
	// any known tier exactly.
	ErrInvalidTierBounds = &ProgramError{Code: 6001, Msg: "invalid tier: bounds do not match any known tier"}
	// ErrProofTooOld is returned when the proof timestamp is older than the
	// freshness window.
	ErrProofTooOld = &ProgramError{Code: 6002, Msg: "proof timestamp is too old (must be within 10 minutes)"}
	// ErrNullifierAlreadyUsed is reserved for cross-account nullifier
	// tracking.
	ErrNullifierAlreadyUsed = &ProgramError{Code: 6003, Msg: "nullifier already used by another account"}
	// ErrBadgeNotExpired is returned when revocation is attempted before the
	// badge expiry has passed.
	ErrBadgeNotExpired = &ProgramError{Code: 6004, Msg: "tier badge has not expired yet"}
	// ErrBadgeNotFound is returned when no badge record exists for the user.
	ErrBadgeNotFound = &ProgramError{Code: 6005, Msg: "tier badge account does not exist"}
	// ErrUnauthorized is returned when the stored badge owner does not match
	// the signing identity.
	ErrUnauthorized = &ProgramError{Code: 6006, Msg: "signer does not own this tier badge"}
	// ErrMalformedPublicInput is returned when a public input buffer does not
	// decode into its expected width.
	ErrMalformedPublicInput = &ProgramError{Code: 6007, Msg: "malformed public input"}
)
