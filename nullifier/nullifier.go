// Package nullifier derives the identity commitment that binds a tier proof
// to a set of wallets and a user secret. The derivation is deterministic and
// independent of the order in which wallets are supplied: the address set is
// normalized and sorted before being folded through a Poseidon chain.
package nullifier

import (
	"errors"
	"math/big"
	"sort"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// ErrEmptyAddressSet is returned when no wallet addresses are provided.
var ErrEmptyAddressSet = errors.New("nullifier: empty wallet address set")

// maxInputBytes truncates each UTF-8 identifier so it fits a single BN254
// field element (31 bytes < 254 bits).
const maxInputBytes = 31

// Derive computes the nullifier for the given wallet address set and secret.
// Every address passes through the same Poseidon fold regardless of the set
// size, so a single-wallet derivation is not distinguishable by construction
// from a multi-wallet one. The result is always reduced into the BN254
// scalar field.
func Derive(addresses []string, secret string) (*big.Int, error) {
	if len(addresses) == 0 {
		return nil, ErrEmptyAddressSet
	}
	sorted := make([]string, len(addresses))
	for i, addr := range addresses {
		sorted[i] = normalizeAddress(addr)
	}
	sort.Strings(sorted)

	// fold the sorted addresses: acc = H(a0); acc = H(acc, ai)
	acc, err := poseidon.Hash([]*big.Int{fieldFromString(sorted[0])})
	if err != nil {
		return nil, err
	}
	for _, addr := range sorted[1:] {
		acc, err = poseidon.Hash([]*big.Int{acc, fieldFromString(addr)})
		if err != nil {
			return nil, err
		}
	}

	secretHash, err := poseidon.Hash([]*big.Int{fieldFromString(secret)})
	if err != nil {
		return nil, err
	}
	return poseidon.Hash([]*big.Int{acc, secretHash})
}

// normalizeAddress canonicalizes EVM-style hex addresses to their EIP-55
// checksummed form so the same wallet supplied in different casings derives
// the same nullifier. Non-EVM identifiers pass through untouched.
func normalizeAddress(addr string) string {
	if ethcommon.IsHexAddress(addr) {
		return ethcommon.HexToAddress(addr).Hex()
	}
	return addr
}

// fieldFromString truncates the UTF-8 bytes of s to 31 bytes and interprets
// them as an unsigned big-endian integer, guaranteed below the field modulus.
func fieldFromString(s string) *big.Int {
	b := []byte(s)
	if len(b) > maxInputBytes {
		b = b[:maxInputBytes]
	}
	return new(big.Int).SetBytes(b)
}
