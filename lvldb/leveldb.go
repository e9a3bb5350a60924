// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb implements kv.Store on goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/covermesh/mutual/kv"
)

var _ kv.Store = (*LevelDB)(nil)

const minTuning = 16

// Options tunes a persistent database.
type Options struct {
	// CacheSize is the memory budget in MiB, split between the block cache
	// and the write buffers.
	CacheSize int
	// OpenFiles caps the number of table files kept open.
	OpenFiles int
	// SyncCommits fsyncs every committed batch.
	SyncCommits bool
}

// LevelDB stores committed pool state.
type LevelDB struct {
	db      *leveldb.DB
	stg     storage.Storage // not closed by db, holds the file lock
	readOpt opt.ReadOptions
	commit  opt.WriteOptions
}

// New opens the database at path, creating it when it does not exist.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open level db storage [%v]", path)
	}
	return open(stg, opts)
}

// NewMem opens a database kept in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, minTuning)
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFiles, minTuning),
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // two are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		_ = stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{
		db:     db,
		stg:    stg,
		commit: opt.WriteOptions{Sync: opts.SyncCommits},
	}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &ldb.readOpt)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &ldb.commit)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &ldb.commit)
}

// Stats returns the leveldb compaction summary.
func (ldb *LevelDB) Stats() (string, error) {
	return ldb.db.GetProperty("leveldb.stats")
}

// Close closes the database and releases its storage. Later calls fail.
func (ldb *LevelDB) Close() error {
	err := ldb.db.Close()
	if serr := ldb.stg.Close(); err == nil {
		err = serr
	}
	return err
}

func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb: ldb}
}

type batch struct {
	ldb *LevelDB
	b   leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

// Write applies the collected writes in one atomic step.
func (b *batch) Write() error {
	if b.b.Len() == 0 {
		return nil
	}
	return b.ldb.db.Write(&b.b, &b.ldb.commit)
}
