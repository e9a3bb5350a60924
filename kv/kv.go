// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the byte store the pool state is committed to.
package kv

// Getter reads committed slots.
type Getter interface {
	// Get returns the value of key, or an error satisfying IsNotFound if absent.
	Get(key []byte) ([]byte, error)
	IsNotFound(err error) bool
}

// Putter writes slots.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Batch collects writes applied atomically by Write.
type Batch interface {
	Putter
	Write() error
}

// Store is a kv store able to commit batches.
type Store interface {
	Getter
	Putter

	NewBatch() Batch
	Close() error
}
