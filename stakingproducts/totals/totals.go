// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package totals

import (
	"github.com/pkg/errors"

	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/safemath"
	"github.com/covermesh/mutual/slots"
)

var slotTotals = mutual.BytesToBytes32([]byte(("pool-weight-totals")))

// Totals are the pool wide sums of target and last effective weights.
type Totals struct {
	TargetWeight    uint64
	EffectiveWeight uint64
}

// Service maintains the pool aggregates. They are only ever adjusted by
// deltas, never re-summed from the products.
type Service struct {
	totals *slots.Mapping[mutual.PoolID, *Totals]
}

func New(sctx *slots.Context) *Service {
	return &Service{
		totals: slots.NewMapping[mutual.PoolID, *Totals](sctx, slotTotals),
	}
}

func (s *Service) Get(pool mutual.PoolID) (*Totals, error) {
	t, err := s.totals.Get(pool)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get totals")
	}
	return t, nil
}

// ApplyDelta adjusts the pool totals and returns the result.
// Increases are applied before decreases, so a delta that nets to a valid
// total never underflows midway.
func (s *Service) ApplyDelta(pool mutual.PoolID, delta *Delta) (*Totals, error) {
	t, err := s.Get(pool)
	if err != nil {
		return nil, err
	}
	if delta == nil || delta.IsEmpty() {
		return t, nil
	}

	target, ok := apply(t.TargetWeight, delta.TargetIncrease, delta.TargetDecrease)
	if !ok {
		return nil, errors.Errorf("total target weight out of range: %d +%d -%d", t.TargetWeight, delta.TargetIncrease, delta.TargetDecrease)
	}
	effective, ok := apply(t.EffectiveWeight, delta.EffectiveIncrease, delta.EffectiveDecrease)
	if !ok {
		return nil, errors.Errorf("total effective weight out of range: %d +%d -%d", t.EffectiveWeight, delta.EffectiveIncrease, delta.EffectiveDecrease)
	}
	t.TargetWeight, t.EffectiveWeight = target, effective

	if err := s.totals.Set(pool, t); err != nil {
		return nil, errors.Wrap(err, "failed to set totals")
	}
	return t, nil
}

func apply(v, inc, dec uint64) (uint64, bool) {
	v, ok := safemath.Add64(v, inc)
	if !ok {
		return 0, false
	}
	return safemath.Sub64(v, dec)
}
