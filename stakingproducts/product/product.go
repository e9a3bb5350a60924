// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package product

import (
	"github.com/pkg/errors"

	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/slots"
	"github.com/covermesh/mutual/stakingproducts/reverts"
)

var (
	slotProducts   = mutual.BytesToBytes32([]byte(("staked-products")))
	slotProductIDs = mutual.BytesToBytes32([]byte(("staked-product-ids")))
)

// Product is the weight record of a product within a pool.
// LastEffectiveWeight is a cached value; it is only guaranteed to be
// max(TargetWeight, utilization) right after a recalculation.
type Product struct {
	TargetWeight        uint8
	LastEffectiveWeight uint16
	Deprecated          bool
	Initialized         bool
}

type productIDs struct {
	IDs []mutual.ProductID
}

type Service struct {
	products *slots.Mapping[mutual.PoolProductKey, *Product]
	ids      *slots.Mapping[mutual.PoolID, *productIDs]
}

func New(sctx *slots.Context) *Service {
	return &Service{
		products: slots.NewMapping[mutual.PoolProductKey, *Product](sctx, slotProducts),
		ids:      slots.NewMapping[mutual.PoolID, *productIDs](sctx, slotProductIDs),
	}
}

// Get returns the product, or a zero product if it was never initialized.
func (s *Service) Get(pool mutual.PoolID, id mutual.ProductID) (*Product, error) {
	p, err := s.products.Get(mutual.PoolProductKey{Pool: pool, Product: id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product")
	}
	return p, nil
}

// GetInitialized is Get that fails for unknown products.
func (s *Service) GetInitialized(pool mutual.PoolID, id mutual.ProductID) (*Product, error) {
	p, err := s.Get(pool, id)
	if err != nil {
		return nil, err
	}
	if !p.Initialized {
		return nil, errors.Wrapf(reverts.ErrProductNotInitialized, "pool %d product %d", pool, id)
	}
	return p, nil
}

// Initialize creates the product with effective weight equal to its target.
func (s *Service) Initialize(pool mutual.PoolID, id mutual.ProductID, targetWeight uint8) (*Product, error) {
	if targetWeight > mutual.MaxTargetWeight {
		return nil, errors.Wrapf(reverts.ErrTargetWeightTooHigh, "product %d weight %d", id, targetWeight)
	}
	p, err := s.Get(pool, id)
	if err != nil {
		return nil, err
	}
	if p.Initialized {
		return nil, errors.Wrapf(reverts.ErrProductAlreadyInitialized, "pool %d product %d", pool, id)
	}

	p = &Product{
		TargetWeight:        targetWeight,
		LastEffectiveWeight: uint16(targetWeight),
		Initialized:         true,
	}
	if err := s.Update(pool, id, p); err != nil {
		return nil, err
	}

	list, err := s.ids.Get(pool)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product ids")
	}
	list.IDs = append(list.IDs, id)
	if err := s.ids.Set(pool, list); err != nil {
		return nil, errors.Wrap(err, "failed to set product ids")
	}
	return p, nil
}

func (s *Service) Update(pool mutual.PoolID, id mutual.ProductID, p *Product) error {
	if err := s.products.Set(mutual.PoolProductKey{Pool: pool, Product: id}, p); err != nil {
		return errors.Wrap(err, "failed to set product")
	}
	return nil
}

// IDs lists the initialized products of the pool in initialization order.
func (s *Service) IDs(pool mutual.PoolID) ([]mutual.ProductID, error) {
	list, err := s.ids.Get(pool)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product ids")
	}
	return list.IDs, nil
}
