package arith

import (
	"github.com/cronokirby/saferith"
)

// Exp returns xᵉ (mod n).
//
// x is reduced mod n first, so any non-negative base is accepted.
// The running time depends only on the announced sizes of x, e and n.
func Exp(x, e *saferith.Nat, n *saferith.Modulus) *saferith.Nat {
	xModN := new(saferith.Nat).Mod(x, n)
	return new(saferith.Nat).Exp(xModN, e, n)
}

// MulExp returns aˣ⋅bʸ (mod n).
func MulExp(a, x, b, y *saferith.Nat, n *saferith.Modulus) *saferith.Nat {
	ax := Exp(a, x, n)
	by := Exp(b, y, n)
	return ax.ModMul(ax, by, n)
}

// IsValidNatModN checks that every x is non nil and lies in [0, n).
func IsValidNatModN(n *saferith.Modulus, xs ...*saferith.Nat) bool {
	if n == nil {
		return false
	}
	// CmpMod writes into the limbs of n, which is shared between goroutines.
	nNat := n.Nat()
	for _, x := range xs {
		if x == nil {
			return false
		}
		if _, _, lt := x.Cmp(nNat); lt != 1 {
			return false
		}
	}
	return true
}

// IsUnitModN checks that every x lies in [1, n) and is coprime to n.
func IsUnitModN(n *saferith.Modulus, xs ...*saferith.Nat) bool {
	if !IsValidNatModN(n, xs...) {
		return false
	}
	for _, x := range xs {
		if x.EqZero() == 1 || x.IsUnit(n) != 1 {
			return false
		}
	}
	return true
}
