package auth_test

import "github.com/cronokirby/saferith"

func decodeNat(b []byte) *saferith.Nat {
	return new(saferith.Nat).SetBytes(b)
}
