// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mutual

import (
	"encoding/binary"
	"strconv"
)

// PoolID identifies a staking pool.
type PoolID uint64

// Bytes returns the big endian encoding of the id, used for storage keys.
func (id PoolID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func (id PoolID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ProductID identifies a product. It is unique within a pool.
type ProductID uint32

func (id ProductID) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(id))
}

func (id ProductID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// PoolProductKey is the storage key of a product within a pool.
type PoolProductKey struct {
	Pool    PoolID
	Product ProductID
}

func (k PoolProductKey) Bytes() []byte {
	return append(k.Pool.Bytes(), k.Product.Bytes()...)
}
