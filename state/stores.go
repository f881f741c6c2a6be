package state

import (
	"github.com/KumKeeHyun/memcell"
	"github.com/KumKeeHyun/memcell/state/materialized"
)

type ReadOnlyCellStore[K, V any] interface {
	Get(key K) (*memcell.MemoryCell[V], error)
}

// CellStore keeps one memory cell per key. Update applies the cell's
// shift-by-one semantics to the keyed entry, creating it on first use.
type CellStore[K, V any] interface {
	ReadOnlyCellStore[K, V]

	Update(key K, value V)
	Delete(key K)
	Close() error
}

func NewCellStore[K, V any](m materialized.Materialized[K, V]) CellStore[K, V] {
	switch m.StoreType() {
	case materialized.BoltDB:
		return newBoltDBCellStore[K, V](m)
	default:
		return newMemCellStore[K, V](m)
	}
}
