package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

// MinTokenLength is the shortest token Token agrees to produce.
const MinTokenLength = 12

// ErrMaxIterations is the error we panic with when the randomness source keeps failing.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// tokenRejectAbove is the largest multiple of len(alphanumeric) that fits in a byte.
// Bytes at or above it are discarded so that every character is equally likely.
const tokenRejectAbove = 256 - 256%len(alphanumeric)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ, i.e. a uniform integer in [0, n).
//
// The top byte is masked down to the bit length of n before comparing,
// so that each candidate is accepted with probability at least 1/2.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	bits := n.BitLen()
	// CmpMod writes into the limbs of its modulus, and n is shared between goroutines.
	nNat := n.Nat()
	out := new(saferith.Nat)
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xFF)
	if extra := bits % 8; extra != 0 {
		mask = byte(1<<extra) - 1
	}
	for {
		mustReadBits(rand, buf)
		buf[0] &= mask
		out.SetBytes(buf)
		if _, _, lt := out.Cmp(nNat); lt == 1 {
			return out
		}
	}
}

// Token returns a random alphanumeric string of the given length.
// It panics if length < MinTokenLength.
func Token(rand io.Reader, length int) string {
	if length < MinTokenLength {
		panic(fmt.Sprintf("sample.Token: length %d is below %d", length, MinTokenLength))
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		mustReadBits(rand, buf)
		for _, b := range buf {
			if int(b) >= tokenRejectAbove {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}
