// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingproducts

import (
	"bytes"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/covermesh/mutual/log"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/stakingproducts/allocation"
	"github.com/covermesh/mutual/stakingproducts/reverts"
)

func TestUnknownProductReadsZero(t *testing.T) {
	ts := newTest(t).Init(100, 0)

	ts.AssertProduct(0, 100, 100).
		AssertProduct(1, 0, 0).
		AssertTotals(100, 100)

	p, err := ts.GetProduct(ts.pool, 1)
	require.NoError(t, err)
	assert.False(t, p.Initialized)
}

func TestEffectiveWeightEqualsTargetWithoutCapacity(t *testing.T) {
	ts := newTest(t).Init(100, 0)

	ts.Recalculate(0).AssertTotals(100, 100)

	ts.SetTarget(0, true, 0).
		AssertProduct(0, 0, 0).
		AssertTotals(0, 0)
}

// Scenario A: utilization 8% against target 10, then target lowered to 5.
func TestDecreaseTargetWeight(t *testing.T) {
	stake := ether(12345)
	cover := new(uint256.Int).Mul(percentOf(stake, 8), uint256.NewInt(2)) // 8% of capacity at 2x

	ts := newTest(t).Init(10, 0).Deposit(stake).Allocate(cover, 0)

	ts.Recalculate(0).
		AssertProduct(0, 10, 10).
		AssertTotals(10, 10)

	// lowering without recalculation keeps the cached effective weight
	ts.SetTarget(5, false, 0).
		AssertProduct(0, 5, 10).
		AssertTotals(5, 10)

	ts.Recalculate(0).
		AssertProduct(0, 5, 8).
		AssertTotals(5, 8)

	// Scenario B
	ts.SetTarget(0, false, 0).AssertTotals(0, 8)
	ts.Recalculate(0).AssertProduct(0, 0, 8).AssertTotals(0, 8)

	// with coupled recalculation utilization still floors the weight
	ts.SetTarget(5, true, 0).AssertProduct(0, 5, 8)
	ts.SetTarget(0, true, 0).AssertProduct(0, 0, 8).AssertTotals(0, 8)
}

// Scenario C
func TestAllocationsExpire(t *testing.T) {
	stake := ether(12345)
	cover := new(uint256.Int).Mul(percentOf(stake, 8), uint256.NewInt(2))

	ts := newTest(t).Init(10, 0).Deposit(stake).Allocate(cover, 0).Recalculate(0)
	ts.AssertTotals(10, 10)

	ts.SetTarget(1, true, 0).AssertTotals(1, 8)

	ts.Advance(mutual.TrancheDuration - 1001)
	ts.Recalculate(0).AssertTotals(1, 8)

	ts.Advance(1)
	allocated, err := ts.GetAllocated(ts.pool, 0)
	require.NoError(t, err)
	assert.Zero(t, allocated)

	ts.Recalculate(0).
		AssertProduct(0, 1, 1).
		AssertTotals(1, 1)
}

func TestExtraDepositsLowerEffectiveWeight(t *testing.T) {
	stake := ether(10000)
	cover := new(uint256.Int).Mul(percentOf(stake, 25), uint256.NewInt(2))

	ts := newTest(t).Init(25, 0).Deposit(stake).Allocate(cover, 0)
	ts.SetTarget(0, true, 0).AssertTotals(0, 25)

	// deposits alone do not touch weights
	ts.Advance(day).Deposit(stake).AssertTotals(0, 25)

	// 12.5% floors to 12
	ts.Recalculate(0).
		AssertProduct(0, 0, 12).
		AssertTotals(0, 12)
}

func TestSaturatesWhenAllocationDwarfsCapacity(t *testing.T) {
	stake := ether(12345)

	ts := newTest(t).Init(100, 0).Deposit(stake).Allocate(stake, 0)

	// leave a single allocation unit of stake: capacity 2 units against 1234500 allocated
	ts.Advance(day).Burn(new(uint256.Int).Sub(stake, uint256.NewInt(mutual.AllocationUnit)))

	capUnits, err := ts.GetCapacity(ts.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), capUnits)

	// burns are only observed at the next recalculation
	ts.AssertProduct(0, 100, 100).AssertTotals(100, 100)

	ts.Recalculate(0).
		AssertProduct(0, 100, mutual.MaxEffectiveWeight).
		AssertTotals(100, uint64(mutual.MaxEffectiveWeight))

	// burning the rest leaves zero capacity, still saturated
	ts.Advance(day).Burn(ether(1)).Recalculate(0).
		AssertProduct(0, 100, mutual.MaxEffectiveWeight)
	capUnits, err = ts.GetCapacity(ts.pool)
	require.NoError(t, err)
	assert.Zero(t, capUnits)
}

func TestSeveralBurns(t *testing.T) {
	products := ids(1, 20)
	ts := newTest(t).Init(50, products...).Deposit(ether(1)).Allocate(ether(1), products...)
	ts.AssertTotals(1000, 1000)

	// half the capacity left: every product at 100% utilization
	active, err := ts.GetActiveStake(ts.pool)
	require.NoError(t, err)
	ts.Advance(day).Burn(new(uint256.Int).Rsh(active, 1))
	ts.Recalculate(products...).AssertTotals(1000, 2000)

	ts.SetTarget(1, true, products...).Recalculate(products...).AssertTotals(20, 2000)

	// raising to the maximum lands exactly on the ceiling, which is allowed
	ts.SetTarget(mutual.MaxTargetWeight, true, products...).AssertTotals(2000, 2000)

	active, err = ts.GetActiveStake(ts.pool)
	require.NoError(t, err)
	ts.Advance(day).Burn(new(uint256.Int).Rsh(active, 1))
	ts.Recalculate(products...).AssertTotals(2000, 4000)
	for _, id := range products {
		ts.AssertProduct(id, 100, 200)
	}
}

// Scenario E
func TestCeilingRejectsIncreaseWithRecalculation(t *testing.T) {
	products := ids(0, 199)
	stake := ether(10000)

	ts := newTest(t).Deposit(stake).Init(5, products...)
	ts.Allocate(percentOf(stake, 10), products...) // 5% of capacity each
	ts.AssertTotals(1000, 1000)

	active, err := ts.GetActiveStake(ts.pool)
	require.NoError(t, err)
	ts.Advance(day).Burn(new(uint256.Int).Sub(active, new(uint256.Int).Rsh(active, 2)))
	ts.Recalculate(products...).AssertTotals(1000, 4000)

	params := make([]ProductParams, 0, len(products))
	for _, id := range products {
		params = append(params, ProductParams{ProductID: id, TargetWeight: 10, Recalculate: true})
	}
	err = ts.SetProducts(ts.pool, params)
	assert.ErrorIs(t, err, reverts.ErrTotalEffectiveWeightExceeded)
	assert.True(t, reverts.IsRevertErr(err))

	// a single product is rejected just the same, and nothing changed
	err = ts.SetTargetWeight(ts.pool, 7, 10, true)
	assert.ErrorIs(t, err, reverts.ErrTotalEffectiveWeightExceeded)
	ts.AssertProduct(7, 5, 20).AssertTotals(1000, 4000)

	// decreases and non recalculated increases are not ceiling checked
	ts.SetTarget(4, true, 7).AssertProduct(7, 4, 20)
	ts.SetTarget(10, false, 7).AssertProduct(7, 10, 20).AssertTotals(1005, 4000)

	// recalculation itself is never blocked
	ts.Recalculate(products...).AssertTotals(1005, 4000)
}

func TestCeilingWithTwentyFullProducts(t *testing.T) {
	products := ids(1, 20)
	stake := ether(1)

	ts := newTest(t).Init(90, products...).Deposit(stake).Allocate(percentOf(ether(2), 90), products...)
	ts.AssertTotals(1800, 1800)

	ts.Advance(day).Burn(percentOf(stake, 50)).Recalculate(products...).AssertTotals(1800, 3600)

	err := ts.SetTargetWeight(ts.pool, 1, mutual.MaxTargetWeight, true)
	assert.ErrorIs(t, err, reverts.ErrTotalEffectiveWeightExceeded)
	ts.AssertProduct(1, 90, 180).AssertTotals(1800, 3600)
}

func TestIncreaseWithoutRecalculationOnlyRaises(t *testing.T) {
	ts := newTest(t).Init(10, 1, 2)

	ts.SetTarget(5, false, 1).AssertProduct(1, 5, 10)
	ts.SetTarget(8, false, 1).AssertProduct(1, 8, 10)
	ts.SetTarget(30, false, 1).AssertProduct(1, 30, 30)
	ts.AssertTotals(40, 40)

	// only recalculation lowers it back
	ts.SetTarget(0, false, 1).AssertProduct(1, 0, 30)
	ts.Recalculate(1).AssertProduct(1, 0, 0).AssertTotals(10, 10)
}

// Scenario D
func TestRecalculateUnknownProductIsAtomic(t *testing.T) {
	stake := ether(100)
	ts := newTest(t).Init(10, 1, 2).Deposit(stake).Allocate(percentOf(stake, 20), 1) // 10% utilization
	ts.SetTarget(0, false, 1).SetTarget(0, false, 2)
	ts.AssertTotals(0, 20)

	err := ts.RecalculateEffectiveWeights(ts.pool, []mutual.ProductID{1, 2, 999})
	assert.ErrorIs(t, err, reverts.ErrProductNotInitialized)
	ts.AssertProduct(1, 0, 10).AssertProduct(2, 0, 10).AssertTotals(0, 20)

	err = ts.RecalculateEffectiveWeights(ts.pool, []mutual.ProductID{999, 1})
	assert.ErrorIs(t, err, reverts.ErrProductNotInitialized)
	ts.AssertTotals(0, 20)

	ts.Recalculate(1, 2).
		AssertProduct(1, 0, 10).
		AssertProduct(2, 0, 0).
		AssertTotals(0, 10)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	products := ids(1, 5)
	stake := ether(1000)
	ts := newTest(t).Init(40, products...).Deposit(stake)
	for i, id := range products {
		ts.Allocate(percentOf(stake, uint64(10*i+1)), id)
	}
	ts.SetTarget(0, false, products...)
	ts.Advance(day).Burn(percentOf(stake, 60))

	ts.Recalculate(products...)
	first := make(map[mutual.ProductID]uint16)
	for _, id := range products {
		p, err := ts.GetProduct(ts.pool, id)
		require.NoError(t, err)
		first[id] = p.LastEffectiveWeight
	}
	total, err := ts.GetTotalEffectiveWeight(ts.pool)
	require.NoError(t, err)

	ts.Recalculate(products...)
	for _, id := range products {
		ts.AssertProduct(id, 0, first[id])
	}
	ts.AssertTotals(0, total)
	// 0.5%, 5.5%, 10.5%, 15.5%, 20.5% of 2x capacity over 40% of the stake
	assert.Equal(t, uint64(1+13+26+38+51), total)
}

func TestSetProductsIsAtomic(t *testing.T) {
	ts := newTest(t).Init(10, 1, 2)

	err := ts.SetProducts(ts.pool, []ProductParams{
		{ProductID: 1, TargetWeight: 50},
		{ProductID: 3, TargetWeight: 50},
	})
	assert.ErrorIs(t, err, reverts.ErrProductNotInitialized)
	ts.AssertProduct(1, 10, 10).AssertTotals(20, 20)

	err = ts.SetProducts(ts.pool, []ProductParams{
		{ProductID: 1, TargetWeight: 50},
		{ProductID: 2, TargetWeight: mutual.MaxTargetWeight + 1},
	})
	assert.ErrorIs(t, err, reverts.ErrTargetWeightTooHigh)
	ts.AssertProduct(1, 10, 10).AssertTotals(20, 20)

	// the same product twice in one batch applies in order
	require.NoError(t, ts.SetProducts(ts.pool, []ProductParams{
		{ProductID: 1, TargetWeight: 50},
		{ProductID: 1, TargetWeight: 20},
	}))
	ts.AssertProduct(1, 20, 50).AssertTotals(30, 60)
}

func TestSetInitialProducts(t *testing.T) {
	ts := newTest(t).Init(10, 1)

	err := ts.InitializeProduct(ts.pool, 1, 20)
	assert.ErrorIs(t, err, reverts.ErrProductAlreadyInitialized)

	err = ts.SetInitialProducts(ts.pool, []InitialProduct{{ProductID: 2, Weight: 10}, {ProductID: 2, Weight: 10}})
	assert.ErrorIs(t, err, reverts.ErrProductAlreadyInitialized)
	ts.AssertProduct(2, 0, 0).AssertTotals(10, 10)

	err = ts.InitializeProduct(ts.pool, 2, mutual.MaxTargetWeight+1)
	assert.ErrorIs(t, err, reverts.ErrTargetWeightTooHigh)

	ts.Init(100, ids(2, 20)...).AssertTotals(1910, 1910)
	err = ts.InitializeProduct(ts.pool, 21, 100)
	assert.ErrorIs(t, err, reverts.ErrTotalTargetWeightExceeded)
	ts.AssertProduct(21, 0, 0).AssertTotals(1910, 1910)

	list, err := ts.GetProductIDs(ts.pool)
	require.NoError(t, err)
	assert.Equal(t, ids(1, 20), list)
}

func TestAllocateCapacity(t *testing.T) {
	stake := ether(1) // 200 units of capacity
	ts := newTest(t).Init(10, 1).Init(0, 2).Deposit(stake)

	_, err := ts.AllocateCapacity(ts.pool, 3, ether(1), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrProductNotInitialized)

	_, err = ts.AllocateCapacity(ts.pool, 1, uint256.NewInt(0), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)

	_, err = ts.AllocateCapacity(ts.pool, 2, uint256.NewInt(1), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrInsufficientCapacity)

	// 10% of 200 units is 20 units, 0.2 token
	tranche, err := ts.AllocateCapacity(ts.pool, 1, percentOf(stake, 15), coverPeriod)
	require.NoError(t, err)
	assert.Equal(t, allocation.TrancheOf(ts.now), tranche)

	_, err = ts.AllocateCapacity(ts.pool, 1, percentOf(stake, 6), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrInsufficientCapacity)
	ts.Allocate(percentOf(stake, 5), 1)

	allocated, err := ts.GetAllocated(ts.pool, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), allocated)

	// a single wei rounds up to a whole unit
	_, err = ts.AllocateCapacity(ts.pool, 1, uint256.NewInt(1), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrInsufficientCapacity)

	ts.AssertProduct(1, 10, 10).AssertTotals(10, 10)
}

func TestRecalculateChecksProductsFirst(t *testing.T) {
	ts := newTest(t).Init(10, 1).Deposit(ether(1))

	// a clock behind the first deposit fails the capacity lookup
	ts.now -= 10
	err := ts.RecalculateEffectiveWeights(ts.pool, []mutual.ProductID{1, 2})
	assert.ErrorIs(t, err, reverts.ErrProductNotInitialized)
	err = ts.RecalculateEffectiveWeights(ts.pool, []mutual.ProductID{1})
	assert.ErrorIs(t, err, reverts.ErrInvalidTime)

	ts.now += 10
	ts.Recalculate(1, 1).AssertProduct(1, 10, 10).AssertTotals(10, 10)
}

func TestAllocateLateInTranche(t *testing.T) {
	stake := ether(1000) // 200000 units
	ts := newTest(t).Init(50, 1).Deposit(stake)

	// last second of the current tranche
	ts.Advance(mutual.TrancheDuration - 1001)
	current := allocation.TrancheOf(ts.now)
	require.Equal(t, ts.now+1, allocation.TrancheEnd(current))

	tranche, err := ts.AllocateCapacity(ts.pool, 1, percentOf(stake, 80), coverPeriod)
	require.NoError(t, err)
	assert.Equal(t, current+1, tranche)

	ts.Advance(1)
	allocated, err := ts.GetAllocated(ts.pool, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(80000), allocated)

	ts.SetTarget(10, true, 1).AssertProduct(1, 10, 40).AssertTotals(10, 40)

	// counted until the tranche holding the end of the period expires
	ts.Advance(allocation.TrancheEnd(tranche) - ts.now - 1).Recalculate(1).AssertProduct(1, 10, 40)
	ts.Advance(1).Recalculate(1).AssertProduct(1, 10, 10).AssertTotals(10, 10)
}

func TestAllocationPeriod(t *testing.T) {
	stake := ether(1)
	ts := newTest(t).Init(50, 1).Deposit(stake)
	d := mutual.TrancheDuration
	current := allocation.TrancheOf(ts.now)

	_, err := ts.AllocateCapacity(ts.pool, 1, ether(1), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidPeriod)
	_, err = ts.AllocateCapacity(ts.pool, 1, ether(1), math.MaxUint64)
	assert.ErrorIs(t, err, reverts.ErrInvalidPeriod)

	// the window holds the current tranche and the next seven
	_, err = ts.AllocateCapacity(ts.pool, 1, percentOf(ether(1), 10), mutual.MaxActiveTranches*d)
	assert.ErrorIs(t, err, reverts.ErrInvalidTranche)

	tranche, err := ts.AllocateCapacity(ts.pool, 1, percentOf(ether(1), 10), (mutual.MaxActiveTranches-1)*d)
	require.NoError(t, err)
	assert.Equal(t, current+mutual.MaxActiveTranches-1, tranche)

	// a period ending on a boundary stays in the tranche ending there
	end := allocation.TrancheEnd(current)
	tranche, err = ts.AllocateCapacity(ts.pool, 1, percentOf(ether(1), 10), end-ts.now)
	require.NoError(t, err)
	assert.Equal(t, current, tranche)

	// failed allocations are rolled back
	allocated, err := ts.GetAllocated(ts.pool, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), allocated)
}

func TestAllocateRaisesEffectiveWeight(t *testing.T) {
	stake := ether(1)
	ts := newTest(t).Init(50, 1).Deposit(stake).Allocate(ether(1), 1) // 50% utilization
	ts.SetTarget(10, false, 1).AssertProduct(1, 10, 50)
	ts.Recalculate(1).AssertProduct(1, 10, 50)

	// stake grows, weight stays until recalculated
	ts.Advance(day).Deposit(ether(1)).AssertProduct(1, 10, 50)
	ts.Recalculate(1).AssertProduct(1, 10, 25).AssertTotals(10, 25)

	// target back up and fill it: 25% + 5% = 30%
	ts.SetTarget(30, false, 1).AssertProduct(1, 30, 30)
	ts.Allocate(percentOf(ether(4), 5), 1).AssertProduct(1, 30, 30).AssertTotals(30, 30)
}

func TestDeallocateCapacity(t *testing.T) {
	stake := ether(1)
	ts := newTest(t).Init(50, 1).Deposit(stake)

	tranche, err := ts.AllocateCapacity(ts.pool, 1, ether(1), coverPeriod)
	require.NoError(t, err)
	ts.SetTarget(0, false, 1)

	err = ts.DeallocateCapacity(ts.pool, 1, ether(2), tranche)
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllocation)
	err = ts.DeallocateCapacity(ts.pool, 1, ether(1), tranche+1)
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllocation)

	require.NoError(t, ts.DeallocateCapacity(ts.pool, 1, percentOf(ether(1), 60), tranche))

	// lowered only by recalculation
	ts.AssertProduct(1, 0, 50)
	ts.Recalculate(1).AssertProduct(1, 0, 20).AssertTotals(0, 20)
}

func TestDeprecateProduct(t *testing.T) {
	stake := ether(1)
	ts := newTest(t).Init(50, 1).Deposit(stake).Allocate(percentOf(stake, 20), 1)

	assert.ErrorIs(t, ts.DeprecateProduct(ts.pool, 2), reverts.ErrProductNotInitialized)
	require.NoError(t, ts.DeprecateProduct(ts.pool, 1))

	_, err := ts.AllocateCapacity(ts.pool, 1, uint256.NewInt(1), coverPeriod)
	assert.ErrorIs(t, err, reverts.ErrProductDeprecated)

	// weights are kept and can still be managed
	p, err := ts.GetProduct(ts.pool, 1)
	require.NoError(t, err)
	assert.True(t, p.Deprecated)
	ts.AssertProduct(1, 50, 50)
	ts.SetTarget(0, false, 1).Recalculate(1).AssertProduct(1, 0, 10).AssertTotals(0, 10)
}

func TestCapacityMultiplier(t *testing.T) {
	ts := newTest(t).Init(100, 1).Deposit(ether(1))

	capUnits, err := ts.GetCapacity(ts.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), capUnits)

	ts.Allocate(ether(1), 1)
	require.NoError(t, ts.SetCapacityMultiplier(ts.pool, 100))
	ts.SetTarget(0, true, 1).AssertProduct(1, 0, 100)

	require.NoError(t, ts.SetCapacityMultiplier(ts.pool, 0))
	ts.Recalculate(1).AssertProduct(1, 0, mutual.MaxEffectiveWeight)
}

func TestSetCapacityMultiplierLogs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.NewLogger(log.JSONHandler(&buf, nil)).With("pkg", "stakingproducts"))
	defer SetLogger(log.WithContext("pkg", "stakingproducts"))

	ts := newTest(t)
	require.NoError(t, ts.SetCapacityMultiplier(ts.pool, 150))
	assert.Contains(t, buf.String(), `"msg":"set capacity multiplier"`)
	assert.Contains(t, buf.String(), `"multiplier":150`)
}

func TestBurnStake(t *testing.T) {
	ts := newTest(t)

	_, err := ts.BurnStake(ts.pool, nil)
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)

	ts.Deposit(ether(3))
	burned, err := ts.BurnStake(ts.pool, ether(5))
	require.NoError(t, err)
	assert.Equal(t, ether(3), burned)

	active, err := ts.GetActiveStake(ts.pool)
	require.NoError(t, err)
	assert.True(t, active.IsZero())
}

func TestCommittedStateSurvivesReopen(t *testing.T) {
	ts := newTest(t).Init(10, 1, 2).Deposit(ether(1)).Allocate(percentOf(ether(1), 10), 1)

	// failed calls leave nothing behind either
	assert.Error(t, ts.InitializeProduct(ts.pool, 2, 10))

	ts.StakingProducts = ts.open()
	ts.AssertProduct(1, 10, 10).AssertProduct(2, 10, 10).AssertTotals(20, 20)

	allocated, err := ts.GetAllocated(ts.pool, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), allocated)
}

func TestPoolsAreIndependent(t *testing.T) {
	ts := newTest(t)
	pools := []mutual.PoolID{1, 2, 3, 4, 5, 6, 7, 8}

	var g errgroup.Group
	for _, pool := range pools {
		g.Go(func() error {
			if err := ts.SetInitialProducts(pool, []InitialProduct{{1, 10}, {2, uint8(pool)}}); err != nil {
				return err
			}
			if err := ts.DepositStake(pool, ether(uint64(pool))); err != nil {
				return err
			}
			for range 10 {
				if _, err := ts.AllocateCapacity(pool, 1, percentOf(ether(uint64(pool)), 1), coverPeriod); err != nil {
					return err
				}
			}
			return ts.RecalculateEffectiveWeights(pool, []mutual.ProductID{1, 2})
		})
	}
	require.NoError(t, g.Wait())

	for _, pool := range pools {
		ts.Pool(pool).
			AssertProduct(1, 10, 10).
			AssertProduct(2, uint8(pool), uint16(pool)).
			AssertTotals(10+uint64(pool), 10+uint64(pool))
	}
}
