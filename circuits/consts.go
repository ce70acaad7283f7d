package circuits

// used across the prover, the verifier and the ledger program
const (
	// NPubInputs is the number of public signals of the tier circuit. Their
	// wire order is fixed: [tierLowerBound, tierUpperBound, nullifier,
	// timestamp]. Reordering breaks every downstream consumer.
	NPubInputs = 4

	// Indices of the public signals in wire order.
	PubInputLowerBound = 0
	PubInputUpperBound = 1
	PubInputNullifier  = 2
	PubInputTimestamp  = 3

	// SerializedFieldSize is the byte width of a serialized field element.
	SerializedFieldSize = 32

	// BalanceBits bounds the private balances and the average quotient. A
	// sum of three balances below 2^62 cannot wrap the BN254 scalar field.
	BalanceBits = 62
)
