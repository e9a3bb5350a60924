// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mutual

import "math"

// Constants of the weight accounting.
const (
	MaxTargetWeight    uint8  = 100 // a product can be promised at most the whole pool capacity.
	WeightDenominator  uint64 = 100 // weights are expressed in percent of pool capacity.
	MaxEffectiveWeight uint16 = math.MaxUint16

	// MaxStructuralProducts is the number of fully weighted products a pool is sized for.
	MaxStructuralProducts   uint64 = 20
	MaxTotalEffectiveWeight uint64 = MaxStructuralProducts * uint64(MaxTargetWeight) // 2000

	CapacityMultiplierDenominator uint64 = 100 // multiplier 100 is 1x
	DefaultCapacityMultiplier     uint32 = 200 // 2x

	AllocationUnit  uint64 = 1e16            // 0.01 token, in base units
	TrancheDuration uint64 = 91 * 24 * 60 * 60 // 91 days, in seconds

	// MaxActiveTranches bounds how far ahead an allocation may be recorded,
	// counting the current tranche.
	MaxActiveTranches uint64 = 8
)
