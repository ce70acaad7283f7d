package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// TiersEndpoint returns the public tier table
	TiersEndpoint = "/tiers"
	// SnapshotsEndpoint returns the snapshot schedule a proof generated now
	// would be anchored at
	SnapshotsEndpoint = "/snapshots"
	// ProofsEndpoint is the endpoint for generating a new tier proof
	ProofsEndpoint = "/proofs"
	// VerifyEndpoint is the endpoint for verifying a tier proof off-chain
	VerifyEndpoint = "/proofs/verify"
	// CredentialURLParam and CredentialEndpoint address a user's badge record
	// in the credential ledger by its 32-byte hex identity
	CredentialURLParam = "identity"
	CredentialEndpoint = "/credentials/{" + CredentialURLParam + "}"
)
