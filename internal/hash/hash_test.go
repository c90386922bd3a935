package hash

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		h := New("test")
		for _, v := range vs {
			if err := h.WriteAny(v); err != nil {
				return err
			}
		}
		return nil
	}

	assert.NoError(t, testFunc(new(saferith.Nat).SetUint64(35)))
	assert.NoError(t, testFunc(saferith.ModulusFromUint64(23)))
	assert.NoError(t, testFunc([]byte{1, 4, 6}, "alice"))

	var n *saferith.Nat
	assert.Error(t, testFunc(n))
	assert.Error(t, testFunc(42))
}

func TestHash_WriteAny_Collision(t *testing.T) {
	sum := func(vs ...interface{}) []byte {
		h := New("test")
		require.NoError(t, h.WriteAny(vs...))
		return h.Sum()
	}

	assert.NotEqual(t, sum([]byte("ab"), []byte("c")), sum([]byte("a"), []byte("bc")))
	assert.NotEqual(t, sum([]byte("abc")), sum("abc"))
	assert.Equal(t, sum([]byte("abc")), sum([]byte("abc")))
}

func TestHash_Context(t *testing.T) {
	h1 := New("a").Sum()
	h2 := New("b").Sum()
	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, DigestLengthBytes)
}

func TestHash_Clone(t *testing.T) {
	h := New("clone", []byte{1})
	c := h.Clone()
	require.NoError(t, c.WriteAny([]byte{2}))
	assert.NotEqual(t, h.Sum(), c.Sum())
	assert.Equal(t, h.Sum(), New("clone", []byte{1}).Sum())
}

func TestHash_NatCapacity(t *testing.T) {
	a := new(saferith.Nat).SetUint64(7)
	b := new(saferith.Nat).SetBytes([]byte{0, 0, 0, 7})
	assert.Equal(t, New("n", a).Sum(), New("n", b).Sum())
}
