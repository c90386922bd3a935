package arith

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	"golang.org/x/sync/errgroup"
)

func nat(x uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(x)
}

func TestExp(t *testing.T) {
	p := saferith.ModulusFromUint64(23)
	assert.Equal(t, saferith.Choice(1), Exp(nat(4), nat(6), p).Eq(nat(2)))
	assert.Equal(t, saferith.Choice(1), Exp(nat(9), nat(6), p).Eq(nat(3)))
	// unreduced base
	assert.Equal(t, saferith.Choice(1), Exp(nat(4+23), nat(6), p).Eq(nat(2)))
	// x⁰ = 1
	assert.Equal(t, saferith.Choice(1), Exp(nat(4), nat(0), p).Eq(nat(1)))
}

func TestExp_MatchesBig(t *testing.T) {
	pBig, ok := new(big.Int).SetString("B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B616073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BFACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371", 16)
	assert.True(t, ok)
	p := saferith.ModulusFromBytes(pBig.Bytes())
	for i := 0; i < 5; i++ {
		x := sample.ModN(rand.Reader, p)
		e := sample.ModN(rand.Reader, p)
		want := new(big.Int).Exp(x.Big(), e.Big(), pBig)
		assert.Equal(t, 0, want.Cmp(Exp(x, e, p).Big()))
	}
}

func TestMulExp(t *testing.T) {
	p := saferith.ModulusFromUint64(23)
	// 4⁵ ⋅ 2⁴ = 12 ⋅ 16 = 192 = 8 (mod 23)
	assert.Equal(t, saferith.Choice(1), MulExp(nat(4), nat(5), nat(2), nat(4), p).Eq(nat(8)))
}

func TestIsValidNatModN(t *testing.T) {
	p := saferith.ModulusFromUint64(23)
	assert.True(t, IsValidNatModN(p, nat(0), nat(22)))
	assert.False(t, IsValidNatModN(p, nat(23)))
	assert.False(t, IsValidNatModN(p, nil))
	assert.False(t, IsValidNatModN(nil, nat(1)))
	assert.True(t, IsUnitModN(p, nat(1), nat(22)))
	assert.False(t, IsUnitModN(p, nat(0)))
}

// Run with -race: range checks must only read the shared modulus.
func TestIsUnitModN_SharedModulus(t *testing.T) {
	p := saferith.ModulusFromUint64(65519)
	before := p.Bytes()

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			for j := 0; j < 64; j++ {
				x := sample.ModN(rand.Reader, p)
				if x.EqZero() == 1 {
					continue
				}
				if !IsUnitModN(p, x) {
					return fmt.Errorf("%v is a unit mod 65519", x.Big())
				}
				Exp(x, nat(3), p)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	assert.Equal(t, before, p.Bytes())
}
