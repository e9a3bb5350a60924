// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/covermesh/mutual/log"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/stakingproducts"
)

// Scenario is a sequence of rounds. Rounds run one after another, the pools of
// a round run concurrently.
type Scenario struct {
	Start  uint64  `yaml:"start"`
	Rounds []Round `yaml:"rounds"`
}

// Round moves the clock forward by Advance seconds, then runs the steps of
// every listed pool.
type Round struct {
	Advance uint64            `yaml:"advance"`
	Pools   map[uint64][]Step `yaml:"pools"`
}

// Step is a single call against a pool. When Fails is set the step must fail
// with an error containing it. Allocations last Period seconds, 28 days when
// unset.
type Step struct {
	Op          string   `yaml:"op"`
	Products    []uint32 `yaml:"products"`
	Weight      uint8    `yaml:"weight"`
	Multiplier  *uint32  `yaml:"multiplier"`
	Amount      string   `yaml:"amount"`
	Period      uint64   `yaml:"period"`
	Tranche     *uint64  `yaml:"tranche"`
	Recalculate bool     `yaml:"recalculate"`
	Expect      *Expect  `yaml:"expect"`
	Fails       string   `yaml:"fails"`
}

// Expect holds the values checked by an expect step. Unset fields are not checked.
type Expect struct {
	Target         *uint8  `yaml:"target"`
	Effective      *uint16 `yaml:"effective"`
	Allocated      *uint64 `yaml:"allocated"`
	TotalTarget    *uint64 `yaml:"totalTarget"`
	TotalEffective *uint64 `yaml:"totalEffective"`
	Capacity       *uint64 `yaml:"capacity"`
	ActiveStake    string  `yaml:"activeStake"`
}

const (
	opMultiplier  = "multiplier"
	opInitialize  = "initialize"
	opDeposit     = "deposit"
	opBurn        = "burn"
	opAllocate    = "allocate"
	opDeallocate  = "deallocate"
	opSetTarget   = "set-target"
	opRecalculate = "recalculate"
	opDeprecate   = "deprecate"
	opExpect      = "expect"
)

const defaultAllocationPeriod = 28 * 24 * 60 * 60

var oneToken = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))

// DecodeScenario reads a YAML scenario. Unknown fields are rejected.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	for i, round := range sc.Rounds {
		for pool, steps := range round.Pools {
			for j, step := range steps {
				if err := step.validate(); err != nil {
					return nil, errors.Wrapf(err, "round %d pool %d step %d", i, pool, j)
				}
			}
		}
	}
	return &sc, nil
}

func (s *Step) validate() error {
	switch s.Op {
	case opMultiplier:
		if s.Multiplier == nil {
			return errors.New("multiplier required")
		}
	case opDeposit, opBurn:
		if s.Amount == "" {
			return errors.New("amount required")
		}
	case opAllocate, opDeallocate:
		if s.Amount == "" {
			return errors.New("amount required")
		}
		if len(s.Products) == 0 {
			return errors.New("products required")
		}
	case opInitialize, opSetTarget, opRecalculate, opDeprecate:
		if len(s.Products) == 0 {
			return errors.New("products required")
		}
	case opExpect:
		if s.Expect == nil {
			return errors.New("expect required")
		}
	default:
		return errors.Errorf("unknown op %q", s.Op)
	}
	if s.Amount != "" {
		if _, err := parseAmount(s.Amount); err != nil {
			return err
		}
	}
	return nil
}

// parseAmount reads a whole token amount, or a raw base unit amount when
// suffixed with "wei".
func parseAmount(s string) (*uint256.Int, error) {
	raw, isWei := strings.CutSuffix(strings.TrimSpace(s), "wei")
	v, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", s)
	}
	if isWei {
		return v, nil
	}
	scaled, overflow := new(uint256.Int).MulOverflow(v, oneToken)
	if overflow {
		return nil, errors.Errorf("amount %q overflows", s)
	}
	return scaled, nil
}

// Simulation drives one engine with a clock that only moves between rounds.
type Simulation struct {
	engine *stakingproducts.StakingProducts
	clock  atomic.Uint64
	pools  map[mutual.PoolID]*poolRunner
	logger log.Logger

	// OnRound, if set, is called after each completed round.
	OnRound func(round int)
}

func newSimulation(newEngine func(clock func() uint64) *stakingproducts.StakingProducts, start uint64, logger log.Logger) *Simulation {
	sim := &Simulation{
		pools:  make(map[mutual.PoolID]*poolRunner),
		logger: logger,
	}
	sim.clock.Store(start)
	sim.engine = newEngine(sim.clock.Load)
	return sim
}

// Run executes the scenario. It stops at the first failed step.
func (sim *Simulation) Run(ctx context.Context, sc *Scenario) error {
	for i, round := range sc.Rounds {
		now := sim.clock.Add(round.Advance)
		sim.logger.Debug("starting round", "round", i, "now", now, "pools", len(round.Pools))

		g, ctx := errgroup.WithContext(ctx)
		for id, steps := range round.Pools {
			runner := sim.pool(mutual.PoolID(id))
			g.Go(func() error {
				return runner.run(ctx, steps)
			})
		}
		if err := g.Wait(); err != nil {
			return errors.Wrapf(err, "round %d", i)
		}
		if sim.OnRound != nil {
			sim.OnRound(i)
		}
	}
	return nil
}

func (sim *Simulation) pool(id mutual.PoolID) *poolRunner {
	if r, ok := sim.pools[id]; ok {
		return r
	}
	r := &poolRunner{
		id:       id,
		engine:   sim.engine,
		tranches: make(map[mutual.ProductID]uint64),
		logger:   sim.logger.New("pool", id),
	}
	sim.pools[id] = r
	return r
}

// Pools returns the ids of every pool the scenario touched, sorted.
func (sim *Simulation) Pools() []mutual.PoolID {
	ids := make([]mutual.PoolID, 0, len(sim.pools))
	for id := range sim.pools {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Report logs the final totals of every pool.
func (sim *Simulation) Report() error {
	for _, id := range sim.Pools() {
		target, err := sim.engine.GetTotalTargetWeight(id)
		if err != nil {
			return err
		}
		effective, err := sim.engine.GetTotalEffectiveWeight(id)
		if err != nil {
			return err
		}
		active, err := sim.engine.GetActiveStake(id)
		if err != nil {
			return err
		}
		capacity, err := sim.engine.GetCapacity(id)
		if err != nil {
			return err
		}
		sim.logger.Info("pool summary",
			"pool", id,
			"target", target,
			"effective", effective,
			"stake", active,
			"capacity", capacity,
		)
	}
	return nil
}

type poolRunner struct {
	id       mutual.PoolID
	engine   *stakingproducts.StakingProducts
	tranches map[mutual.ProductID]uint64 // last tranche allocated to per product
	logger   log.Logger
}

func (r *poolRunner) run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Trace("running step", "step", i, "op", step.Op)

		err := r.apply(&step)
		switch {
		case step.Fails == "" && err != nil:
			return errors.Wrapf(err, "pool %d step %d (%s)", r.id, i, step.Op)
		case step.Fails != "" && err == nil:
			return errors.Errorf("pool %d step %d (%s): expected failure %q", r.id, i, step.Op, step.Fails)
		case step.Fails != "" && !strings.Contains(err.Error(), step.Fails):
			return errors.Errorf("pool %d step %d (%s): failed with %q, expected %q", r.id, i, step.Op, err, step.Fails)
		case err != nil:
			r.logger.Debug("step failed as expected", "step", i, "op", step.Op, "error", err)
		}
	}
	return nil
}

func (r *poolRunner) products(s *Step) []mutual.ProductID {
	ids := make([]mutual.ProductID, 0, len(s.Products))
	for _, p := range s.Products {
		ids = append(ids, mutual.ProductID(p))
	}
	return ids
}

func (r *poolRunner) apply(s *Step) error {
	var amount *uint256.Int
	if s.Amount != "" {
		var err error
		if amount, err = parseAmount(s.Amount); err != nil {
			return err
		}
	}

	switch s.Op {
	case opMultiplier:
		return r.engine.SetCapacityMultiplier(r.id, *s.Multiplier)
	case opInitialize:
		initial := make([]stakingproducts.InitialProduct, 0, len(s.Products))
		for _, id := range r.products(s) {
			initial = append(initial, stakingproducts.InitialProduct{ProductID: id, Weight: s.Weight})
		}
		return r.engine.SetInitialProducts(r.id, initial)
	case opDeposit:
		return r.engine.DepositStake(r.id, amount)
	case opBurn:
		burned, err := r.engine.BurnStake(r.id, amount)
		if err != nil {
			return err
		}
		r.logger.Debug("burned stake", "requested", amount, "burned", burned)
		return nil
	case opAllocate:
		period := s.Period
		if period == 0 {
			period = defaultAllocationPeriod
		}
		for _, id := range r.products(s) {
			tranche, err := r.engine.AllocateCapacity(r.id, id, amount, period)
			if err != nil {
				return err
			}
			r.tranches[id] = tranche
		}
		return nil
	case opDeallocate:
		for _, id := range r.products(s) {
			tranche, ok := r.tranches[id]
			if s.Tranche != nil {
				tranche, ok = *s.Tranche, true
			}
			if !ok {
				return errors.Errorf("product %d has no allocated tranche", id)
			}
			if err := r.engine.DeallocateCapacity(r.id, id, amount, tranche); err != nil {
				return err
			}
		}
		return nil
	case opSetTarget:
		params := make([]stakingproducts.ProductParams, 0, len(s.Products))
		for _, id := range r.products(s) {
			params = append(params, stakingproducts.ProductParams{ProductID: id, TargetWeight: s.Weight, Recalculate: s.Recalculate})
		}
		return r.engine.SetProducts(r.id, params)
	case opRecalculate:
		return r.engine.RecalculateEffectiveWeights(r.id, r.products(s))
	case opDeprecate:
		for _, id := range r.products(s) {
			if err := r.engine.DeprecateProduct(r.id, id); err != nil {
				return err
			}
		}
		return nil
	case opExpect:
		return r.check(r.products(s), s.Expect)
	}
	return errors.Errorf("unknown op %q", s.Op)
}

func (r *poolRunner) check(ids []mutual.ProductID, e *Expect) error {
	for _, id := range ids {
		p, err := r.engine.GetProduct(r.id, id)
		if err != nil {
			return err
		}
		if e.Target != nil && p.TargetWeight != *e.Target {
			return errors.Errorf("product %d target weight %d, expected %d", id, p.TargetWeight, *e.Target)
		}
		if e.Effective != nil && p.LastEffectiveWeight != *e.Effective {
			return errors.Errorf("product %d effective weight %d, expected %d", id, p.LastEffectiveWeight, *e.Effective)
		}
		if e.Allocated != nil {
			units, err := r.engine.GetAllocated(r.id, id)
			if err != nil {
				return err
			}
			if units != *e.Allocated {
				return errors.Errorf("product %d allocated %d units, expected %d", id, units, *e.Allocated)
			}
		}
	}

	if e.TotalTarget != nil {
		total, err := r.engine.GetTotalTargetWeight(r.id)
		if err != nil {
			return err
		}
		if total != *e.TotalTarget {
			return errors.Errorf("total target weight %d, expected %d", total, *e.TotalTarget)
		}
	}
	if e.TotalEffective != nil {
		total, err := r.engine.GetTotalEffectiveWeight(r.id)
		if err != nil {
			return err
		}
		if total != *e.TotalEffective {
			return errors.Errorf("total effective weight %d, expected %d", total, *e.TotalEffective)
		}
	}
	if e.Capacity != nil {
		units, err := r.engine.GetCapacity(r.id)
		if err != nil {
			return err
		}
		if units != *e.Capacity {
			return errors.Errorf("capacity %d units, expected %d", units, *e.Capacity)
		}
	}
	if e.ActiveStake != "" {
		want, err := parseAmount(e.ActiveStake)
		if err != nil {
			return err
		}
		active, err := r.engine.GetActiveStake(r.id)
		if err != nil {
			return err
		}
		if !active.Eq(want) {
			return errors.Errorf("active stake %v, expected %v", active, want)
		}
	}
	return nil
}
