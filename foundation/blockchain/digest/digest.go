// Package digest provides the hashing support used to link blocks and build
// merkle trees for the ledger.
package digest

import (
	"crypto/sha256"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the length of a hex encoded digest.
const Size = 2 * sha256.Size

// Sentinel is the value used in place of a hash when there is nothing to hash.
// The genesis block uses it as its previous hash and a block without
// transactions uses it as its merkle root.
const Sentinel = "0"

// =============================================================================

// Hash returns the lowercase hex encoded SHA-256 digest of the data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return common.Bytes2Hex(sum[:])
}

// HashString returns the digest of the string's bytes.
func HashString(s string) string {
	return Hash([]byte(s))
}

// Concat joins the parts in order and returns the digest of the result.
// Hex digests are joined as text, not as the raw bytes they represent.
func Concat(parts ...string) string {
	return HashString(strings.Join(parts, ""))
}

// IsHash reports whether s has the shape of a digest produced by this
// package or is the sentinel value.
func IsHash(s string) bool {
	if s == Sentinel {
		return true
	}

	if len(s) != Size || strings.ToLower(s) != s {
		return false
	}

	_, err := hexutil.Decode("0x" + s)
	return err == nil
}
