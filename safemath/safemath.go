// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package safemath provides overflow aware and saturating arithmetic for the weight accounting.
package safemath

import (
	"math"
	"math/bits"

	"github.com/holiman/uint256"
)

// Add64 returns a+b and false if the addition overflowed.
func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

// Sub64 returns a-b and false if the subtraction underflowed.
func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

// Clamp16 converts v to uint16, saturating at math.MaxUint16.
func Clamp16(v uint64) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// Clamp256 converts v to uint64, saturating at math.MaxUint64.
func Clamp256(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// MulDiv returns floor(a*b/c) and false if the product overflowed 256 bits.
// It panics if c is zero.
func MulDiv(a, b, c *uint256.Int) (*uint256.Int, bool) {
	if c.IsZero() {
		panic("safemath: division by zero")
	}
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return z, false
	}
	return z.Div(z, c), true
}

// MulDivUp returns ceil(a*b/c) and false if the product overflowed 256 bits.
// It panics if c is zero.
func MulDivUp(a, b, c *uint256.Int) (*uint256.Int, bool) {
	if c.IsZero() {
		panic("safemath: division by zero")
	}
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return z, false
	}
	rem := new(uint256.Int).Mod(z, c)
	z.Div(z, c)
	if !rem.IsZero() {
		z.AddUint64(z, 1)
	}
	return z, true
}

// DivUp returns ceil(a/b). It panics if b is zero.
func DivUp(a, b *uint256.Int) *uint256.Int {
	z, _ := MulDivUp(a, uint256.NewInt(1), b)
	return z
}
