// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package capacity converts stake and allocations into capacity units and weights.
// Every function is pure and saturates instead of wrapping.
package capacity

import (
	"math"
	"math/bits"

	"github.com/holiman/uint256"

	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/safemath"
)

// Capacity returns the capacity units backed by activeStake under the given
// multiplier, where 100 is 1x.
func Capacity(activeStake *uint256.Int, multiplier uint32) uint64 {
	if activeStake == nil || activeStake.IsZero() || multiplier == 0 {
		return 0
	}
	denom := new(uint256.Int).Mul(
		uint256.NewInt(mutual.CapacityMultiplierDenominator),
		uint256.NewInt(mutual.GetConfig().AllocationUnit),
	)
	units, ok := safemath.MulDiv(activeStake, uint256.NewInt(uint64(multiplier)), denom)
	if !ok {
		return math.MaxUint64
	}
	return safemath.Clamp256(units)
}

// ToUnits converts an amount in base units to allocation units, rounding up
// so that a non-zero amount always consumes capacity.
func ToUnits(amount *uint256.Int) uint64 {
	if amount == nil || amount.IsZero() {
		return 0
	}
	return safemath.Clamp256(safemath.DivUp(amount, uint256.NewInt(mutual.GetConfig().AllocationUnit)))
}

// MaxAllocation is the number of units a product with the given target weight
// may have allocated out of capacity.
func MaxAllocation(capacity uint64, targetWeight uint8) uint64 {
	targetWeight = min(targetWeight, mutual.MaxTargetWeight)
	hi, lo := bits.Mul64(capacity, uint64(targetWeight))
	q, _ := bits.Div64(hi, lo, mutual.WeightDenominator)
	return q
}

// Utilization returns allocated as a floored percentage of capacity, saturated
// at mutual.MaxEffectiveWeight. With zero capacity any allocation saturates.
func Utilization(allocated, capacity uint64) uint64 {
	if allocated == 0 {
		return 0
	}
	if capacity == 0 {
		return uint64(mutual.MaxEffectiveWeight)
	}
	hi, lo := bits.Mul64(allocated, mutual.WeightDenominator)
	if hi >= capacity {
		// quotient does not fit in 64 bits
		return uint64(mutual.MaxEffectiveWeight)
	}
	q, _ := bits.Div64(hi, lo, capacity)
	return min(q, uint64(mutual.MaxEffectiveWeight))
}

// EffectiveWeight is max(target, utilization) saturated to 16 bits.
func EffectiveWeight(targetWeight uint8, utilization uint64) uint16 {
	return safemath.Clamp16(max(uint64(targetWeight), utilization))
}
