// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingproducts

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/covermesh/mutual/log"
	"github.com/covermesh/mutual/metrics"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/safemath"
	"github.com/covermesh/mutual/slots"
	"github.com/covermesh/mutual/stakingproducts/allocation"
	"github.com/covermesh/mutual/stakingproducts/capacity"
	"github.com/covermesh/mutual/stakingproducts/product"
	"github.com/covermesh/mutual/stakingproducts/reverts"
	"github.com/covermesh/mutual/stakingproducts/stake"
	"github.com/covermesh/mutual/stakingproducts/totals"
	"github.com/covermesh/mutual/state"
)

const namespace = "staking-products"

var (
	logger = log.WithContext("pkg", "stakingproducts")

	metricRecalculations        = metrics.LazyLoadCounterVec("weight_recalculations_total", []string{"path"})
	metricCeilingRejections     = metrics.LazyLoadCounter("total_effective_weight_rejections_total")
	metricTotalEffectiveWeight  = metrics.LazyLoadGaugeVec("pool_total_effective_weight", []string{"pool"})
	metricTotalTargetWeight     = metrics.LazyLoadGaugeVec("pool_total_target_weight", []string{"pool"})
	metricCallDuration          = metrics.LazyLoadHistogram("call_duration_us", metrics.BucketMicros)
	metricEffectiveWeightRecalc = metrics.LazyLoadHistogram("recalculated_effective_weight", metrics.BucketWeights)
)

func SetLogger(l log.Logger) {
	logger = l
}

// InitialProduct declares a product and its starting weight.
type InitialProduct struct {
	ProductID mutual.ProductID
	Weight    uint8
}

// ProductParams is a target weight change. With Recalculate the effective
// weight is recomputed from current capacity and allocations and the pool
// ceiling is enforced when the target increased.
type ProductParams struct {
	ProductID    mutual.ProductID
	TargetWeight uint8
	Recalculate  bool
}

// StakingProducts is the effective weight accountant of every pool.
// Calls are serialized; each mutation either commits entirely or not at all.
type StakingProducts struct {
	mu    sync.Mutex
	state *state.State
	clock func() uint64

	products    *product.Service
	totals      *totals.Service
	stakes      *stake.Service
	allocations *allocation.Service
}

// New creates the accountant over st. clock returns the current unix time in
// seconds and defaults to the wall clock.
func New(st *state.State, clock func() uint64) *StakingProducts {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	sctx := slots.NewContext(namespace, st)

	return &StakingProducts{
		state:       st,
		clock:       clock,
		products:    product.New(sctx),
		totals:      totals.New(sctx),
		stakes:      stake.New(sctx),
		allocations: allocation.New(sctx),
	}
}

// mutate runs fn inside a checkpoint and commits on success. A non-nil
// totals result is published to the pool gauges.
func (s *StakingProducts) mutate(pool mutual.PoolID, fn func(now uint64) (*totals.Totals, error)) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { metricCallDuration().Observe(time.Since(start).Microseconds()) }()

	rev := s.state.NewCheckpoint()
	t, err := fn(s.clock())
	if err != nil {
		s.state.RevertTo(rev)
		return err
	}
	if err := s.state.Commit(); err != nil {
		s.state.RevertTo(rev)
		return errors.Wrap(err, "failed to commit")
	}
	if t != nil {
		labels := map[string]string{"pool": pool.String()}
		metricTotalEffectiveWeight().SetWithLabel(int64(t.EffectiveWeight), labels)
		metricTotalTargetWeight().SetWithLabel(int64(t.TargetWeight), labels)
	}
	return nil
}

func (s *StakingProducts) view(fn func(now uint64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.clock())
}

//
// Getters - no state change
//

// GetProduct returns the weights of a product. Unknown products read as zero.
func (s *StakingProducts) GetProduct(pool mutual.PoolID, id mutual.ProductID) (p *product.Product, err error) {
	err = s.view(func(uint64) error {
		p, err = s.products.Get(pool, id)
		return err
	})
	return
}

// GetProductIDs lists the initialized products of the pool.
func (s *StakingProducts) GetProductIDs(pool mutual.PoolID) (ids []mutual.ProductID, err error) {
	err = s.view(func(uint64) error {
		ids, err = s.products.IDs(pool)
		return err
	})
	return
}

func (s *StakingProducts) GetTotalTargetWeight(pool mutual.PoolID) (uint64, error) {
	t, err := s.getTotals(pool)
	if err != nil {
		return 0, err
	}
	return t.TargetWeight, nil
}

func (s *StakingProducts) GetTotalEffectiveWeight(pool mutual.PoolID) (uint64, error) {
	t, err := s.getTotals(pool)
	if err != nil {
		return 0, err
	}
	return t.EffectiveWeight, nil
}

func (s *StakingProducts) getTotals(pool mutual.PoolID) (t *totals.Totals, err error) {
	err = s.view(func(uint64) error {
		t, err = s.totals.Get(pool)
		return err
	})
	return
}

// GetActiveStake returns the stake of the pool net of burns.
func (s *StakingProducts) GetActiveStake(pool mutual.PoolID) (active *uint256.Int, err error) {
	err = s.view(func(now uint64) error {
		active, err = s.stakes.ActiveStake(pool, now)
		return err
	})
	return
}

// GetCapacity returns the capacity of the pool in allocation units.
func (s *StakingProducts) GetCapacity(pool mutual.PoolID) (units uint64, err error) {
	err = s.view(func(now uint64) error {
		units, err = s.capacityOf(pool, now)
		return err
	})
	return
}

// GetAllocated returns the non-expired allocation units of a product.
func (s *StakingProducts) GetAllocated(pool mutual.PoolID, id mutual.ProductID) (units uint64, err error) {
	err = s.view(func(now uint64) error {
		units, err = s.allocations.Allocated(pool, id, now)
		return err
	})
	return
}

//
// Setters - state change
//

// InitializeProduct creates a product with target and effective weight both
// set to weight.
func (s *StakingProducts) InitializeProduct(pool mutual.PoolID, id mutual.ProductID, weight uint8) error {
	return s.SetInitialProducts(pool, []InitialProduct{{ProductID: id, Weight: weight}})
}

// SetInitialProducts initializes a batch of products. The total target weight
// of the pool may not exceed the structural ceiling.
func (s *StakingProducts) SetInitialProducts(pool mutual.PoolID, products []InitialProduct) error {
	logger.Debug("setting initial products", "pool", pool, "count", len(products))

	err := s.mutate(pool, func(uint64) (*totals.Totals, error) {
		delta := totals.NewDelta()
		for _, ip := range products {
			if _, err := s.products.Initialize(pool, ip.ProductID, ip.Weight); err != nil {
				return nil, err
			}
			delta.Target(0, uint64(ip.Weight)).Effective(0, uint64(ip.Weight))
		}
		t, err := s.totals.ApplyDelta(pool, delta)
		if err != nil {
			return nil, err
		}
		if ceiling := mutual.GetConfig().MaxTotalEffectiveWeight; t.TargetWeight > ceiling {
			return nil, errors.Wrapf(reverts.ErrTotalTargetWeightExceeded, "total %d over %d", t.TargetWeight, ceiling)
		}
		return t, nil
	})
	if err != nil {
		logger.Info("set initial products failed", "pool", pool, "error", err)
		return err
	}

	logger.Info("set initial products", "pool", pool, "count", len(products))
	return nil
}

// SetTargetWeight changes the target weight of a single product.
func (s *StakingProducts) SetTargetWeight(pool mutual.PoolID, id mutual.ProductID, target uint8, recalculate bool) error {
	return s.SetProducts(pool, []ProductParams{{ProductID: id, TargetWeight: target, Recalculate: recalculate}})
}

// SetProducts applies a batch of target weight changes.
//
// Without recalculation a decrease leaves the effective weight untouched and
// an increase only raises it to the new target. With recalculation the
// effective weight is recomputed. If any target increased under recalculation
// and the pool total effective weight ends above the ceiling, the whole batch
// is rejected.
func (s *StakingProducts) SetProducts(pool mutual.PoolID, params []ProductParams) error {
	logger.Debug("setting products", "pool", pool, "count", len(params))

	err := s.mutate(pool, func(now uint64) (*totals.Totals, error) {
		var (
			delta        = totals.NewDelta()
			increased    bool
			capUnits     uint64
			haveCapacity bool
			recalculated int64
		)
		for _, param := range params {
			if param.TargetWeight > mutual.MaxTargetWeight {
				return nil, errors.Wrapf(reverts.ErrTargetWeightTooHigh, "product %d weight %d", param.ProductID, param.TargetWeight)
			}
			p, err := s.products.GetInitialized(pool, param.ProductID)
			if err != nil {
				return nil, err
			}

			oldTarget, oldEffective := p.TargetWeight, p.LastEffectiveWeight
			switch {
			case param.Recalculate:
				if !haveCapacity {
					if capUnits, err = s.capacityOf(pool, now); err != nil {
						return nil, err
					}
					haveCapacity = true
				}
				if p.LastEffectiveWeight, err = s.effectiveWeight(pool, param.ProductID, param.TargetWeight, capUnits, now); err != nil {
					return nil, err
				}
				increased = increased || param.TargetWeight > oldTarget
				recalculated++
			case param.TargetWeight > oldTarget:
				p.LastEffectiveWeight = max(oldEffective, uint16(param.TargetWeight))
			}
			p.TargetWeight = param.TargetWeight

			delta.Target(uint64(oldTarget), uint64(p.TargetWeight)).
				Effective(uint64(oldEffective), uint64(p.LastEffectiveWeight))
			if err := s.products.Update(pool, param.ProductID, p); err != nil {
				return nil, err
			}
		}

		t, err := s.totals.ApplyDelta(pool, delta)
		if err != nil {
			return nil, err
		}
		if ceiling := mutual.GetConfig().MaxTotalEffectiveWeight; increased && t.EffectiveWeight > ceiling {
			metricCeilingRejections().Add(1)
			return nil, errors.Wrapf(reverts.ErrTotalEffectiveWeightExceeded, "total %d over %d", t.EffectiveWeight, ceiling)
		}
		metricRecalculations().AddWithLabel(recalculated, map[string]string{"path": "set-products"})
		return t, nil
	})
	if err != nil {
		logger.Info("set products failed", "pool", pool, "error", err)
		return err
	}

	logger.Info("set products", "pool", pool, "count", len(params))
	return nil
}

// RecalculateEffectiveWeights recomputes the effective weight of every listed
// product from current capacity and allocations. It is the only path that
// lowers an effective weight, and it is never limited by the ceiling.
func (s *StakingProducts) RecalculateEffectiveWeights(pool mutual.PoolID, ids []mutual.ProductID) error {
	logger.Debug("recalculating effective weights", "pool", pool, "count", len(ids))

	var total uint64
	err := s.mutate(pool, func(now uint64) (*totals.Totals, error) {
		for _, id := range ids {
			if _, err := s.products.GetInitialized(pool, id); err != nil {
				return nil, err
			}
		}
		capUnits, err := s.capacityOf(pool, now)
		if err != nil {
			return nil, err
		}

		delta := totals.NewDelta()
		for _, id := range ids {
			// re-read, ids may repeat
			p, err := s.products.GetInitialized(pool, id)
			if err != nil {
				return nil, err
			}
			effective, err := s.effectiveWeight(pool, id, p.TargetWeight, capUnits, now)
			if err != nil {
				return nil, err
			}
			delta.Effective(uint64(p.LastEffectiveWeight), uint64(effective))
			p.LastEffectiveWeight = effective
			if err := s.products.Update(pool, id, p); err != nil {
				return nil, err
			}
			metricEffectiveWeightRecalc().Observe(int64(effective))
		}

		t, err := s.totals.ApplyDelta(pool, delta)
		if err != nil {
			return nil, err
		}
		total = t.EffectiveWeight
		metricRecalculations().AddWithLabel(int64(len(ids)), map[string]string{"path": "recalculate"})
		return t, nil
	})
	if err != nil {
		logger.Info("recalculate effective weights failed", "pool", pool, "error", err)
		return err
	}

	logger.Info("recalculated effective weights", "pool", pool, "count", len(ids), "total", total)
	return nil
}

// DeprecateProduct stops new allocations to the product. Its weights are kept.
func (s *StakingProducts) DeprecateProduct(pool mutual.PoolID, id mutual.ProductID) error {
	logger.Debug("deprecating product", "pool", pool, "product", id)

	err := s.mutate(pool, func(uint64) (*totals.Totals, error) {
		p, err := s.products.GetInitialized(pool, id)
		if err != nil {
			return nil, err
		}
		p.Deprecated = true
		return nil, s.products.Update(pool, id, p)
	})
	if err != nil {
		logger.Info("deprecate product failed", "pool", pool, "product", id, "error", err)
		return err
	}

	logger.Info("deprecated product", "pool", pool, "product", id)
	return nil
}

// SetCapacityMultiplier sets the capacity multiplier of the pool, 100 being 1x.
func (s *StakingProducts) SetCapacityMultiplier(pool mutual.PoolID, multiplier uint32) error {
	logger.Debug("setting capacity multiplier", "pool", pool, "multiplier", multiplier)

	err := s.mutate(pool, func(uint64) (*totals.Totals, error) {
		return nil, s.stakes.SetMultiplier(pool, multiplier)
	})
	if err != nil {
		logger.Info("set capacity multiplier failed", "pool", pool, "error", err)
		return err
	}

	logger.Info("set capacity multiplier", "pool", pool, "multiplier", multiplier)
	return nil
}

// DepositStake adds a tranche of stake to the pool. Weights are not touched
// until the next recalculation.
func (s *StakingProducts) DepositStake(pool mutual.PoolID, amount *uint256.Int) error {
	logger.Debug("depositing stake", "pool", pool, "amount", amount)

	err := s.mutate(pool, func(now uint64) (*totals.Totals, error) {
		return nil, s.stakes.Deposit(pool, amount, now)
	})
	if err != nil {
		logger.Info("deposit stake failed", "pool", pool, "error", err)
		return err
	}

	logger.Info("deposited stake", "pool", pool, "amount", amount)
	return nil
}

// BurnStake slashes the pool and returns the amount actually burned. Weights
// are not touched until the next recalculation.
func (s *StakingProducts) BurnStake(pool mutual.PoolID, amount *uint256.Int) (burned *uint256.Int, err error) {
	logger.Debug("burning stake", "pool", pool, "amount", amount)

	err = s.mutate(pool, func(now uint64) (*totals.Totals, error) {
		burned, err = s.stakes.Burn(pool, amount, now)
		return nil, err
	})
	if err != nil {
		logger.Info("burn stake failed", "pool", pool, "error", err)
		return nil, err
	}

	logger.Info("burned stake", "pool", pool, "burned", burned)
	return burned, nil
}

// AllocateCapacity consumes amount of the product's share of capacity for
// period seconds. The allocation is recorded in the first tranche still
// active at the end of the period, which is returned. The effective weight is
// only ever raised here.
func (s *StakingProducts) AllocateCapacity(pool mutual.PoolID, id mutual.ProductID, amount *uint256.Int, period uint64) (tranche uint64, err error) {
	logger.Debug("allocating capacity", "pool", pool, "product", id, "amount", amount, "period", period)

	err = s.mutate(pool, func(now uint64) (*totals.Totals, error) {
		p, err := s.products.GetInitialized(pool, id)
		if err != nil {
			return nil, err
		}
		if p.Deprecated {
			return nil, errors.Wrapf(reverts.ErrProductDeprecated, "pool %d product %d", pool, id)
		}
		units := capacity.ToUnits(amount)
		if units == 0 {
			return nil, reverts.ErrZeroAmount
		}
		if tranche, err = allocation.TrancheFor(now, period); err != nil {
			return nil, err
		}

		capUnits, err := s.capacityOf(pool, now)
		if err != nil {
			return nil, err
		}
		allocated, err := s.allocations.Allocated(pool, id, now)
		if err != nil {
			return nil, err
		}
		after, ok := safemath.Add64(allocated, units)
		if limit := capacity.MaxAllocation(capUnits, p.TargetWeight); !ok || after > limit {
			return nil, errors.Wrapf(reverts.ErrInsufficientCapacity, "requested %d units, %d of %d in use", units, allocated, limit)
		}

		if err := s.allocations.Allocate(pool, id, units, tranche, now); err != nil {
			return nil, err
		}

		effective := max(p.LastEffectiveWeight, capacity.EffectiveWeight(p.TargetWeight, capacity.Utilization(after, capUnits)))
		if effective == p.LastEffectiveWeight {
			return nil, nil
		}
		delta := totals.NewDelta().Effective(uint64(p.LastEffectiveWeight), uint64(effective))
		p.LastEffectiveWeight = effective
		if err := s.products.Update(pool, id, p); err != nil {
			return nil, err
		}
		metricRecalculations().AddWithLabel(1, map[string]string{"path": "allocate"})
		return s.totals.ApplyDelta(pool, delta)
	})
	if err != nil {
		logger.Info("allocate capacity failed", "pool", pool, "product", id, "error", err)
		return 0, err
	}

	logger.Info("allocated capacity", "pool", pool, "product", id, "tranche", tranche)
	return tranche, nil
}

// DeallocateCapacity releases amount previously allocated in tranche. The
// effective weight is left for the next recalculation to lower.
func (s *StakingProducts) DeallocateCapacity(pool mutual.PoolID, id mutual.ProductID, amount *uint256.Int, tranche uint64) error {
	logger.Debug("deallocating capacity", "pool", pool, "product", id, "amount", amount, "tranche", tranche)

	err := s.mutate(pool, func(uint64) (*totals.Totals, error) {
		return nil, s.allocations.Deallocate(pool, id, capacity.ToUnits(amount), tranche)
	})
	if err != nil {
		logger.Info("deallocate capacity failed", "pool", pool, "product", id, "error", err)
		return err
	}

	logger.Info("deallocated capacity", "pool", pool, "product", id, "tranche", tranche)
	return nil
}

func (s *StakingProducts) capacityOf(pool mutual.PoolID, now uint64) (uint64, error) {
	active, err := s.stakes.ActiveStake(pool, now)
	if err != nil {
		return 0, err
	}
	multiplier, err := s.stakes.Multiplier(pool)
	if err != nil {
		return 0, err
	}
	return capacity.Capacity(active, multiplier), nil
}

func (s *StakingProducts) effectiveWeight(pool mutual.PoolID, id mutual.ProductID, target uint8, capUnits, now uint64) (uint16, error) {
	allocated, err := s.allocations.Allocated(pool, id, now)
	if err != nil {
		return 0, err
	}
	return capacity.EffectiveWeight(target, capacity.Utilization(allocated, capUnits)), nil
}
