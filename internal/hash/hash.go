package hash

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = 64

// Hash is the transcript hash used for deriving challenges and fingerprints.
//
// Internally, this is a wrapper around blake3.Hasher, but any hash function with
// an easily extendable output would work as well.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is initialized with the given context string,
// followed by the optional initial data.
func New(context string, initialData ...interface{}) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.WriteAny(BytesWithDomain{TheDomain: "context", Bytes: []byte(context)})
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *saferith.Nat
//   - *saferith.Modulus
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first four types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = BytesWithDomain{"[]byte", t}
		case string:
			toBeWritten = BytesWithDomain{"string", []byte(t)}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = BytesWithDomain{"saferith.Nat", trimmed(t.Bytes())}
		case *saferith.Modulus:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Modulus: nil")
			}
			toBeWritten = BytesWithDomain{"saferith.Modulus", trimmed(t.Bytes())}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// trimmed strips leading zeros, so that the encoding of a number does not depend
// on the capacity it was announced with.
func trimmed(b []byte) []byte {
	return bytes.TrimLeft(b, "\x00")
}
