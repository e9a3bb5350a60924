// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/covermesh/mutual/cache"
	"github.com/covermesh/mutual/kv"
	"github.com/covermesh/mutual/log"
	"github.com/covermesh/mutual/metrics"
	"github.com/covermesh/mutual/mutual"
	"github.com/covermesh/mutual/stackedmap"
)

const defaultCacheSize = 4096

var (
	logger              = log.WithContext("pkg", "state")
	metricCacheHitMiss  = metrics.LazyLoadGaugeVec("state_cache_hit_miss_count", []string{"event"})
	metricCommittedKeys = metrics.LazyLoadCounter("state_committed_keys_total")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return "state: " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the storage of the accounting engine.
// Writes are buffered in a stacked map until Commit, reads of committed
// values go through an LRU cache in front of the kv store.
// It is not safe for concurrent use.
type State struct {
	store kv.Store
	cache *cache.Storage
	sm    *stackedmap.StackedMap[mutual.Bytes32, []byte]
}

// New create state object.
func New(store kv.Store, cacheSize int) (*State, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, err := cache.NewStorage(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new state cache")
	}

	s := &State{store: store, cache: c}
	s.sm = stackedmap.New(s.committedGetter)
	return s, nil
}

func (s *State) committedGetter(key mutual.Bytes32) ([]byte, bool, error) {
	raw, err := s.cache.GetOrLoad(key, func(key mutual.Bytes32) ([]byte, error) {
		raw, err := s.store.Get(key.Bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, false, &Error{err}
	}
	return raw, len(raw) > 0, nil
}

// GetRaw returns the raw value stored at key, nil if absent.
func (s *State) GetRaw(key mutual.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(key)
	return v, err
}

// SetRaw sets the raw value at key. An empty value deletes the key.
func (s *State) SetRaw(key mutual.Bytes32, raw []byte) {
	s.sm.Put(key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be passed through.
func (s *State) DecodeStorage(key mutual.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRaw(key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be passed through.
func (s *State) EncodeStorage(key mutual.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRaw(key, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all pending changes to the underlying store and resets the checkpoints.
func (s *State) Commit() error {
	latest := make(map[mutual.Bytes32][]byte)
	var order []mutual.Bytes32
	s.sm.Journal(func(key mutual.Bytes32, value []byte) bool {
		if _, ok := latest[key]; !ok {
			order = append(order, key)
		}
		latest[key] = value
		return true
	})
	if len(order) == 0 {
		return nil
	}

	batch := s.store.NewBatch()
	for _, key := range order {
		var err error
		if raw := latest[key]; len(raw) == 0 {
			err = batch.Delete(key.Bytes())
		} else {
			err = batch.Put(key.Bytes(), raw)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for _, key := range order {
		s.cache.Add(key, latest[key])
	}
	s.sm = stackedmap.New(s.committedGetter)
	metricCommittedKeys().Add(int64(len(order)))
	s.reportCache()
	return nil
}

// reportCache publishes the cache counters, and logs them when the hit rate moved.
func (s *State) reportCache() {
	changed, hit, miss := s.cache.Stats()
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
	if changed {
		logger.Debug("state cache stats", "hit", hit, "miss", miss, "entries", s.cache.Len())
	}
}
