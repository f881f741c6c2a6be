package state

import (
	"errors"
	"sync"

	"github.com/KumKeeHyun/memcell"
	"github.com/KumKeeHyun/memcell/state/materialized"
)

func newMemCellStore[K, V any](mater materialized.Materialized[K, V]) CellStore[K, V] {
	return &memCellStore[K, V]{
		cells:    make(map[string]cellState[V], 100),
		keySerde: mater.KeySerde(),
		mu:       sync.Mutex{},
	}
}

type cellState[V any] struct {
	current V
	last    V
	hasLast bool
}

type memCellStore[K, V any] struct {
	cells    map[string]cellState[V]
	keySerde materialized.Serde[K]
	mu       sync.Mutex
}

var _ CellStore[any, any] = &memCellStore[any, any]{}

func (cs *memCellStore[K, V]) Get(key K) (*memcell.MemoryCell[V], error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	keySer := cs.keySerde.Serialize(key)
	s, exists := cs.cells[string(keySer)]
	if !exists {
		return nil, errors.New("cannot find value")
	}
	return memcell.WithLast(s.current, s.last, s.hasLast), nil
}

func (cs *memCellStore[K, V]) Update(key K, value V) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	keySer := cs.keySerde.Serialize(key)
	s, exists := cs.cells[string(keySer)]
	if !exists {
		cs.cells[string(keySer)] = cellState[V]{current: value}
		return
	}
	cs.cells[string(keySer)] = cellState[V]{
		current: value,
		last:    s.current,
		hasLast: true,
	}
}

func (cs *memCellStore[K, V]) Delete(key K) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	keySer := cs.keySerde.Serialize(key)
	delete(cs.cells, string(keySer))
}

func (cs *memCellStore[K, V]) Close() error {
	return nil
}
