package state

import (
	"testing"

	"github.com/KumKeeHyun/memcell/state/materialized"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func newBoltMaterialized(t *testing.T, dir string) materialized.Materialized[string, int] {
	t.Helper()

	mater, err := materialized.New(
		materialized.WithKeySerde[string, int](materialized.StrSerde),
		materialized.WithValueSerde[string, int](materialized.IntSerde),
		materialized.WithBoltDB[string, int]("cells"),
		materialized.WithDirPath[string, int](dir),
	)
	assert.Nil(t, err)
	return mater
}

func TestBoltDBCellStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewCellStore(newBoltMaterialized(t, t.TempDir()))

	_, err := store.Get("temp")
	assert.NotNil(t, err)

	store.Update("temp", 20)
	cell, err := store.Get("temp")
	assert.Nil(t, err)
	assert.Equal(t, 20, cell.Current())
	assert.False(t, cell.HasPrevious())

	store.Update("temp", 23)
	cell, err = store.Get("temp")
	assert.Nil(t, err)
	assert.Equal(t, 23, cell.Current())
	last, ok := cell.Last()
	assert.True(t, ok)
	assert.Equal(t, 20, last)

	store.Update("temp", 25)
	cell, _ = store.Get("temp")
	last, _ = cell.Last()
	assert.Equal(t, 23, last)

	store.Delete("temp")
	_, err = store.Get("temp")
	assert.NotNil(t, err)

	assert.Nil(t, store.Close())
}

func TestBoltDBCellStoreReopen(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()

	store := NewCellStore(newBoltMaterialized(t, dir))
	store.Update("temp", 20)
	store.Update("temp", 23)
	assert.Nil(t, store.Close())

	reopened := NewCellStore(newBoltMaterialized(t, dir))
	cell, err := reopened.Get("temp")
	assert.Nil(t, err)
	assert.Equal(t, 23, cell.Current())
	last, ok := cell.Last()
	assert.True(t, ok)
	assert.Equal(t, 20, last)

	assert.Nil(t, reopened.Close())
}

func TestCellRecordRoundTrip(t *testing.T) {
	cur, last, hasLast := decodeCellRecord(encodeCellRecord([]byte("cur"), []byte("last"), true))
	assert.Equal(t, []byte("cur"), cur)
	assert.Equal(t, []byte("last"), last)
	assert.True(t, hasLast)

	cur, last, hasLast = decodeCellRecord(encodeCellRecord([]byte("only"), nil, false))
	assert.Equal(t, []byte("only"), cur)
	assert.Nil(t, last)
	assert.False(t, hasLast)
}
