// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/slots"
	"github.com/covermesh/mutual/stakingproducts/reverts"
)

var slotPools = mutual.BytesToBytes32([]byte(("stake-pools")))

// Deposit is a tranche of stake added at Start.
type Deposit struct {
	Start  uint64
	Amount *uint256.Int
}

// Burn is a slashing event. It applies pro rata to every deposit made at or before Time.
type Burn struct {
	Time   uint64
	Amount *uint256.Int
}

type body struct {
	Multiplier    uint32
	HasMultiplier bool
	LastEvent     uint64
	Deposits      []Deposit // ordered by Start
	Burns         []Burn    // ordered by Time
}

// Service keeps the deposit tranches and the burn log of each pool.
type Service struct {
	pools *slots.Mapping[mutual.PoolID, *body]
}

func New(sctx *slots.Context) *Service {
	return &Service{
		pools: slots.NewMapping[mutual.PoolID, *body](sctx, slotPools),
	}
}

func (s *Service) get(pool mutual.PoolID) (*body, error) {
	b, err := s.pools.Get(pool)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool stake")
	}
	return b, nil
}

func (s *Service) set(pool mutual.PoolID, b *body) error {
	if err := s.pools.Set(pool, b); err != nil {
		return errors.Wrap(err, "failed to set pool stake")
	}
	return nil
}

// Multiplier returns the capacity multiplier of the pool, 100 being 1x.
// Pools that never set one use the configured default.
func (s *Service) Multiplier(pool mutual.PoolID) (uint32, error) {
	b, err := s.get(pool)
	if err != nil {
		return 0, err
	}
	if !b.HasMultiplier {
		return mutual.GetConfig().DefaultCapacityMultiplier, nil
	}
	return b.Multiplier, nil
}

func (s *Service) SetMultiplier(pool mutual.PoolID, multiplier uint32) error {
	b, err := s.get(pool)
	if err != nil {
		return err
	}
	b.Multiplier = multiplier
	b.HasMultiplier = true
	return s.set(pool, b)
}

// Deposit adds a new tranche of stake at now.
func (s *Service) Deposit(pool mutual.PoolID, amount *uint256.Int, now uint64) error {
	if amount == nil || amount.IsZero() {
		return reverts.ErrZeroAmount
	}
	b, err := s.get(pool)
	if err != nil {
		return err
	}
	if now < b.LastEvent {
		return errors.Wrapf(reverts.ErrInvalidTime, "deposit at %d before last event %d", now, b.LastEvent)
	}
	b.Deposits = append(b.Deposits, Deposit{Start: now, Amount: amount.Clone()})
	b.LastEvent = now
	return s.set(pool, b)
}

// Burn slashes up to amount of the stake active at now and returns the amount
// actually burned.
func (s *Service) Burn(pool mutual.PoolID, amount *uint256.Int, now uint64) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, reverts.ErrZeroAmount
	}
	b, err := s.get(pool)
	if err != nil {
		return nil, err
	}
	if now < b.LastEvent {
		return nil, errors.Wrapf(reverts.ErrInvalidTime, "burn at %d before last event %d", now, b.LastEvent)
	}
	tranches, err := b.replay(now)
	if err != nil {
		return nil, err
	}
	active := sum(tranches)
	if active.IsZero() {
		return new(uint256.Int), nil
	}

	burned := amount.Clone()
	if burned.Gt(active) {
		burned.Set(active)
	}
	b.Burns = append(b.Burns, Burn{Time: now, Amount: burned.Clone()})
	b.LastEvent = now
	if err := s.set(pool, b); err != nil {
		return nil, err
	}
	return burned, nil
}

// ActiveStake returns the stake of the pool as of asOf, net of burns.
// It fails with reverts.ErrInvalidTime when asOf precedes the first deposit.
func (s *Service) ActiveStake(pool mutual.PoolID, asOf uint64) (*uint256.Int, error) {
	tranches, err := s.Tranches(pool, asOf)
	if err != nil {
		return nil, err
	}
	return sum(tranches), nil
}

// Tranches returns the post-burn deposits of the pool as of asOf.
func (s *Service) Tranches(pool mutual.PoolID, asOf uint64) ([]Deposit, error) {
	b, err := s.get(pool)
	if err != nil {
		return nil, err
	}
	return b.replay(asOf)
}

// replay applies the burn log in order to the deposits made up to asOf.
func (b *body) replay(asOf uint64) ([]Deposit, error) {
	if len(b.Deposits) == 0 {
		return nil, nil
	}
	if asOf < b.Deposits[0].Start {
		return nil, errors.Wrapf(reverts.ErrInvalidTime, "%d precedes first deposit at %d", asOf, b.Deposits[0].Start)
	}

	tranches := make([]Deposit, 0, len(b.Deposits))
	next := 0
	depositUntil := func(t uint64) {
		for ; next < len(b.Deposits) && b.Deposits[next].Start <= t; next++ {
			tranches = append(tranches, Deposit{
				Start:  b.Deposits[next].Start,
				Amount: b.Deposits[next].Amount.Clone(),
			})
		}
	}

	for _, burn := range b.Burns {
		if burn.Time > asOf {
			break
		}
		depositUntil(burn.Time)
		applyBurn(tranches, burn.Amount)
	}
	depositUntil(asOf)
	return tranches, nil
}

// applyBurn spreads amount over tranches proportionally to their size. The
// rounding remainder is taken from the newest tranches first.
func applyBurn(tranches []Deposit, amount *uint256.Int) {
	total := sum(tranches)
	if total.IsZero() {
		return
	}
	if !amount.Lt(total) {
		for i := range tranches {
			tranches[i].Amount.Clear()
		}
		return
	}

	burned := new(uint256.Int)
	for i := range tranches {
		share, _ := new(uint256.Int).MulDivOverflow(tranches[i].Amount, amount, total)
		tranches[i].Amount.Sub(tranches[i].Amount, share)
		burned.Add(burned, share)
	}

	dust := new(uint256.Int).Sub(amount, burned)
	for i := len(tranches) - 1; i >= 0 && !dust.IsZero(); i-- {
		take := dust.Clone()
		if take.Gt(tranches[i].Amount) {
			take.Set(tranches[i].Amount)
		}
		tranches[i].Amount.Sub(tranches[i].Amount, take)
		dust.Sub(dust, take)
	}
}

func sum(tranches []Deposit) *uint256.Int {
	total := new(uint256.Int)
	for _, t := range tranches {
		total.Add(total, t.Amount)
	}
	return total
}
