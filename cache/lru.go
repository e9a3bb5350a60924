// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/covermesh/mutual/mutual"
)

// Storage caches committed storage slots by key. A nil value records a slot
// known to be empty, so repeated reads of unset slots skip the store too.
type Storage struct {
	lru       *lru.Cache
	hit, miss atomic.Int64
	rate      atomic.Int32
}

// NewStorage creates a cache holding at most maxEntries slots.
// maxEntries should be > 0, or an error returned.
func NewStorage(maxEntries int) (*Storage, error) {
	c, err := lru.New(maxEntries)
	if err != nil {
		return nil, err
	}
	return &Storage{lru: c}, nil
}

// Get returns the cached value of a slot.
func (s *Storage) Get(key mutual.Bytes32) ([]byte, bool) {
	v, ok := s.lru.Get(key)
	if !ok {
		s.miss.Add(1)
		return nil, false
	}
	s.hit.Add(1)
	return v.([]byte), true
}

// Add caches the committed value of a slot.
func (s *Storage) Add(key mutual.Bytes32, value []byte) {
	s.lru.Add(key, value)
}

// GetOrLoad returns the cached value of key, calling load on a miss.
// Failed loads are not cached.
func (s *Storage) GetOrLoad(key mutual.Bytes32, load func(mutual.Bytes32) ([]byte, error)) ([]byte, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return nil, err
	}
	s.Add(key, v)
	return v, nil
}

// Len returns the number of cached slots.
func (s *Storage) Len() int { return s.lru.Len() }

// Stats returns the hit and miss counts, and whether the hit rate moved by at
// least 0.1% since the previous call.
func (s *Storage) Stats() (changed bool, hit, miss int64) {
	hit, miss = s.hit.Load(), s.miss.Load()

	var rate int32
	if lookups := hit + miss; lookups > 0 {
		rate = int32(hit * 1000 / lookups)
	}
	return s.rate.Swap(rate) != rate, hit, miss
}
