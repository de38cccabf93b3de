// Package zone holds the cryptographic identities of GNS zones: key pairs,
// the zkey text representation and the derivation of DHT/namestore query hashes.
package zone

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base32"
	"fmt"
	"strings"
)

// KeySize is the length of a zone public key in bytes
const KeySize = 32

// HashSize is the length of a query hash in bytes
const HashSize = sha512.Size

// zkeyEncoding is the Crockford base32 variant GNS uses for key labels
// nolint:gochecknoglobals
var zkeyEncoding = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// PublicKey is the durable identifier of a zone
type PublicKey struct {
	data [KeySize]byte
}

// PrivateKey signs records of a zone and authorizes shortening entries
type PrivateKey struct {
	seed [KeySize]byte
	pub  PublicKey
}

// Hash identifies one (zone, label) query towards namestore and DHT
type Hash [HashSize]byte

// NewPublicKey creates a key from its raw serialization
func NewPublicKey(data []byte) (*PublicKey, error) {
	if len(data) != KeySize {
		return nil, fmt.Errorf("wrong public key length: %d", len(data))
	}

	pk := PublicKey{}
	copy(pk.data[:], data)

	return &pk, nil
}

// GeneratePrivateKey creates a fresh zone key pair
func GeneratePrivateKey() (*PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("can't generate zone key: %w", err)
	}

	sk := PrivateKey{}
	copy(sk.seed[:], priv.Seed())
	copy(sk.pub.data[:], pub)

	return &sk, nil
}

// Public returns the public half of the key pair
func (k *PrivateKey) Public() *PublicKey {
	pub := k.pub

	return &pub
}

// Bytes returns the raw serialization of the key
func (k *PublicKey) Bytes() []byte {
	out := make([]byte, KeySize)
	copy(out, k.data[:])

	return out
}

// Equal reports whether both keys identify the same zone
func (k *PublicKey) Equal(other *PublicKey) bool {
	if other == nil {
		return false
	}

	return bytes.Equal(k.data[:], other.data[:])
}

// Zkey returns the base32 label form of the key, usable inside a ".zkey" name
func (k *PublicKey) Zkey() string {
	return zkeyEncoding.EncodeToString(k.data[:])
}

// String implements `fmt.Stringer`; shortened for log output
func (k *PublicKey) String() string {
	z := k.Zkey()

	return z[:8] + "…"
}

// ParseZkey decodes the base32 label form of a zone key.
// Decoding is case-insensitive, as DNS names are.
func ParseZkey(label string) (*PublicKey, error) {
	raw, err := zkeyEncoding.DecodeString(strings.ToUpper(label))
	if err != nil {
		return nil, fmt.Errorf("invalid zkey label '%s': %w", label, err)
	}

	return NewPublicKey(raw)
}

// QueryHash derives the namestore/DHT key for one label in a zone.
// Both sides of the protocol must derive the identical hash, so the
// label is canonicalized to lower case first.
func QueryHash(zoneKey *PublicKey, label string) Hash {
	h := sha512.New()
	h.Write([]byte(strings.ToLower(label)))
	h.Write([]byte{0})
	h.Write(zoneKey.data[:])

	var out Hash
	copy(out[:], h.Sum(nil))

	return out
}

// HashData hashes arbitrary data into the query-hash domain.
// The VPN bridge uses this to derive service hashes.
func HashData(data []byte) Hash {
	var out Hash

	sum := sha512.Sum512(data)
	copy(out[:], sum[:])

	return out
}

// String implements `fmt.Stringer`; shortened for log output
func (h Hash) String() string {
	return fmt.Sprintf("%x…", h[:8])
}
