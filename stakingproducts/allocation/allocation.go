// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocation

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/safemath"
	"github.com/covermesh/mutual/slots"
	"github.com/covermesh/mutual/stakingproducts/reverts"
)

var slotAllocations = mutual.BytesToBytes32([]byte(("allocations")))

// Tranche holds the units allocated to a product in one tranche.
type Tranche struct {
	ID    uint64
	Units uint64
}

type ledger struct {
	Tranches []Tranche // ordered by ID
}

// TrancheOf returns the id of the tranche containing t.
func TrancheOf(t uint64) uint64 {
	return t / mutual.GetConfig().TrancheDuration
}

// TrancheEnd returns the first second at which the tranche is expired.
func TrancheEnd(id uint64) uint64 {
	end, ok := safemath.Add64(id, 1)
	if !ok {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(end, mutual.GetConfig().TrancheDuration)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// Expired reports whether allocations in the tranche stopped counting at asOf.
func Expired(id, asOf uint64) bool {
	return TrancheEnd(id) <= asOf
}

// TrancheFor returns the tranche of an allocation made at now for period
// seconds: the first tranche still active when the period ends.
func TrancheFor(now, period uint64) (uint64, error) {
	if period == 0 {
		return 0, errors.Wrap(reverts.ErrInvalidPeriod, "zero period")
	}
	end, ok := safemath.Add64(now, period)
	if !ok {
		return 0, errors.Wrapf(reverts.ErrInvalidPeriod, "period %d overflows", period)
	}
	tranche := TrancheOf(end - 1)
	if err := checkTranche(tranche, now); err != nil {
		return 0, err
	}
	return tranche, nil
}

// checkTranche rejects tranches already expired at now, and those beyond the
// active window.
func checkTranche(tranche, now uint64) error {
	if Expired(tranche, now) {
		return errors.Wrapf(reverts.ErrInvalidTranche, "tranche %d expired", tranche)
	}
	// not expired implies tranche >= TrancheOf(now)
	if tranche-TrancheOf(now) >= mutual.MaxActiveTranches {
		return errors.Wrapf(reverts.ErrInvalidTranche, "tranche %d beyond the %d active tranches", tranche, mutual.MaxActiveTranches)
	}
	return nil
}

// Service is the allocation ledger of every (pool, product) pair.
// Expired tranches are left in place and ignored on read.
type Service struct {
	ledgers *slots.Mapping[mutual.PoolProductKey, *ledger]
}

func New(sctx *slots.Context) *Service {
	return &Service{
		ledgers: slots.NewMapping[mutual.PoolProductKey, *ledger](sctx, slotAllocations),
	}
}

func (s *Service) get(key mutual.PoolProductKey) (*ledger, error) {
	l, err := s.ledgers.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allocations")
	}
	return l, nil
}

func (s *Service) set(key mutual.PoolProductKey, l *ledger) error {
	if len(l.Tranches) == 0 {
		s.ledgers.Delete(key)
		return nil
	}
	if err := s.ledgers.Set(key, l); err != nil {
		return errors.Wrap(err, "failed to set allocations")
	}
	return nil
}

// Allocate records units against the product in the given tranche.
func (s *Service) Allocate(pool mutual.PoolID, product mutual.ProductID, units, tranche, now uint64) error {
	if units == 0 {
		return reverts.ErrZeroAmount
	}
	if err := checkTranche(tranche, now); err != nil {
		return err
	}
	key := mutual.PoolProductKey{Pool: pool, Product: product}
	l, err := s.get(key)
	if err != nil {
		return err
	}

	i := l.find(tranche)
	if i < len(l.Tranches) && l.Tranches[i].ID == tranche {
		sum, ok := safemath.Add64(l.Tranches[i].Units, units)
		if !ok {
			return errors.New("allocation overflow")
		}
		l.Tranches[i].Units = sum
	} else {
		l.Tranches = append(l.Tranches, Tranche{})
		copy(l.Tranches[i+1:], l.Tranches[i:])
		l.Tranches[i] = Tranche{ID: tranche, Units: units}
	}
	return s.set(key, l)
}

// Deallocate releases units previously allocated in the given tranche.
func (s *Service) Deallocate(pool mutual.PoolID, product mutual.ProductID, units, tranche uint64) error {
	if units == 0 {
		return reverts.ErrZeroAmount
	}
	key := mutual.PoolProductKey{Pool: pool, Product: product}
	l, err := s.get(key)
	if err != nil {
		return err
	}

	i := l.find(tranche)
	if i >= len(l.Tranches) || l.Tranches[i].ID != tranche || l.Tranches[i].Units < units {
		return errors.Wrapf(reverts.ErrInsufficientAllocation, "tranche %d", tranche)
	}
	l.Tranches[i].Units -= units
	if l.Tranches[i].Units == 0 {
		l.Tranches = append(l.Tranches[:i], l.Tranches[i+1:]...)
	}
	return s.set(key, l)
}

// Allocated returns the units of the product in tranches not yet expired at asOf.
func (s *Service) Allocated(pool mutual.PoolID, product mutual.ProductID, asOf uint64) (uint64, error) {
	tranches, err := s.Tranches(pool, product, asOf)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, t := range tranches {
		var ok bool
		if total, ok = safemath.Add64(total, t.Units); !ok {
			return math.MaxUint64, nil
		}
	}
	return total, nil
}

// Tranches returns the active tranches of the product at asOf.
func (s *Service) Tranches(pool mutual.PoolID, product mutual.ProductID, asOf uint64) ([]Tranche, error) {
	l, err := s.get(mutual.PoolProductKey{Pool: pool, Product: product})
	if err != nil {
		return nil, err
	}
	active := make([]Tranche, 0, len(l.Tranches))
	for _, t := range l.Tranches {
		if !Expired(t.ID, asOf) {
			active = append(active, t)
		}
	}
	return active, nil
}

// find returns the index of id, or where it would be inserted.
func (l *ledger) find(id uint64) int {
	for i, t := range l.Tranches {
		if t.ID >= id {
			return i
		}
	}
	return len(l.Tranches)
}
