// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingproducts

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covermesh/mutual/kv"
	"github.com/covermesh/mutual/lvldb"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/state"
)

const (
	day         = uint64(24 * 60 * 60)
	coverPeriod = 28 * day
)

// AccountantTest drives a StakingProducts instance for a single pool with a
// controllable clock. Every step requires success unless it is an Expect call.
type AccountantTest struct {
	*StakingProducts
	t    *testing.T
	db   kv.Store
	pool mutual.PoolID
	now  uint64
}

func newTest(t *testing.T) *AccountantTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ts := &AccountantTest{t: t, db: db, pool: 1, now: 10*mutual.TrancheDuration + 1000}
	ts.StakingProducts = ts.open()
	return ts
}

// open creates a fresh accountant over the same store and clock.
func (ts *AccountantTest) open() *StakingProducts {
	st, err := state.New(ts.db, 0)
	require.NoError(ts.t, err)
	return New(st, func() uint64 { return ts.now })
}

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

// percentOf returns pct percent of amount.
func percentOf(amount *uint256.Int, pct uint64) *uint256.Int {
	v := new(uint256.Int).Mul(amount, uint256.NewInt(pct))
	return v.Div(v, uint256.NewInt(100))
}

func ids(from, to uint32) []mutual.ProductID {
	out := make([]mutual.ProductID, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, mutual.ProductID(id))
	}
	return out
}

func (ts *AccountantTest) Pool(pool mutual.PoolID) *AccountantTest {
	ts.pool = pool
	return ts
}

func (ts *AccountantTest) Advance(seconds uint64) *AccountantTest {
	ts.now += seconds
	return ts
}

func (ts *AccountantTest) Init(weight uint8, products ...mutual.ProductID) *AccountantTest {
	batch := make([]InitialProduct, 0, len(products))
	for _, id := range products {
		batch = append(batch, InitialProduct{ProductID: id, Weight: weight})
	}
	require.NoError(ts.t, ts.SetInitialProducts(ts.pool, batch))
	return ts
}

func (ts *AccountantTest) Deposit(amount *uint256.Int) *AccountantTest {
	require.NoError(ts.t, ts.DepositStake(ts.pool, amount))
	return ts
}

func (ts *AccountantTest) Burn(amount *uint256.Int) *AccountantTest {
	_, err := ts.BurnStake(ts.pool, amount)
	require.NoError(ts.t, err)
	return ts
}

func (ts *AccountantTest) Allocate(amount *uint256.Int, products ...mutual.ProductID) *AccountantTest {
	for _, id := range products {
		_, err := ts.AllocateCapacity(ts.pool, id, amount, coverPeriod)
		require.NoError(ts.t, err, "allocate product %d", id)
	}
	return ts
}

func (ts *AccountantTest) SetTarget(weight uint8, recalculate bool, products ...mutual.ProductID) *AccountantTest {
	params := make([]ProductParams, 0, len(products))
	for _, id := range products {
		params = append(params, ProductParams{ProductID: id, TargetWeight: weight, Recalculate: recalculate})
	}
	require.NoError(ts.t, ts.SetProducts(ts.pool, params))
	return ts
}

func (ts *AccountantTest) Recalculate(products ...mutual.ProductID) *AccountantTest {
	require.NoError(ts.t, ts.RecalculateEffectiveWeights(ts.pool, products))
	return ts
}

func (ts *AccountantTest) AssertProduct(id mutual.ProductID, target uint8, effective uint16) *AccountantTest {
	p, err := ts.GetProduct(ts.pool, id)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, target, p.TargetWeight, "target weight of product %d", id)
	assert.Equal(ts.t, effective, p.LastEffectiveWeight, "effective weight of product %d", id)
	return ts
}

func (ts *AccountantTest) AssertTotals(target, effective uint64) *AccountantTest {
	gotTarget, err := ts.GetTotalTargetWeight(ts.pool)
	require.NoError(ts.t, err)
	gotEffective, err := ts.GetTotalEffectiveWeight(ts.pool)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, target, gotTarget, "total target weight")
	assert.Equal(ts.t, effective, gotEffective, "total effective weight")
	return ts.AssertSums()
}

// AssertSums checks the incrementally maintained totals against a full re-sum.
func (ts *AccountantTest) AssertSums() *AccountantTest {
	list, err := ts.GetProductIDs(ts.pool)
	require.NoError(ts.t, err)

	var target, effective uint64
	for _, id := range list {
		p, err := ts.GetProduct(ts.pool, id)
		require.NoError(ts.t, err)
		require.True(ts.t, p.Initialized)
		target += uint64(p.TargetWeight)
		effective += uint64(p.LastEffectiveWeight)
	}

	gotTarget, err := ts.GetTotalTargetWeight(ts.pool)
	require.NoError(ts.t, err)
	gotEffective, err := ts.GetTotalEffectiveWeight(ts.pool)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, target, gotTarget, "sum of target weights")
	assert.Equal(ts.t, effective, gotEffective, "sum of effective weights")
	return ts
}
