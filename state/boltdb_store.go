package state

import (
	"encoding/binary"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/KumKeeHyun/memcell"
	"github.com/KumKeeHyun/memcell/state/materialized"
	bolt "go.etcd.io/bbolt"
)

const (
	dbFile = "memcell.db"
)

var (
	dbs     = map[string]*bolt.DB{}
	dbslock = sync.Mutex{}
)

func getBoltDB(path string) *bolt.DB {
	dbslock.Lock()
	defer dbslock.Unlock()

	db, exists := dbs[path]
	if exists {
		return db
	}

	newDB := openBoltDB(path)
	dbs[path] = newDB
	return newDB
}

func openBoltDB(path string) *bolt.DB {
	bopts := &bolt.Options{}
	bopts.Timeout = time.Second

	db, err := bolt.Open(path, 0600, bopts)
	if err != nil {
		// TODO: handle error
		panic(err)
	}
	return db
}

func closeBoltDB(path string) error {
	dbslock.Lock()
	defer dbslock.Unlock()

	db, exists := dbs[path]
	if !exists {
		return nil
	}
	delete(dbs, path)
	return db.Close()
}

func newBoltDBCellStore[K, V any](mater materialized.Materialized[K, V]) CellStore[K, V] {
	dbPath := path.Join(mater.DirPath(), dbFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		panic(err)
	}
	db := getBoltDB(dbPath)

	// Create new bucket with Materialized.Name().
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(mater.Name()))
		return err
	})
	if err != nil {
		// TODO: handle error
		panic(err)
	}

	return &boltDBCellStore[K, V]{
		db:       db,
		dbPath:   dbPath,
		bucket:   []byte(mater.Name()),
		keySerde: mater.KeySerde(),
		valSerde: mater.ValueSerde(),
	}
}

type boltDBCellStore[K, V any] struct {
	db       *bolt.DB
	dbPath   string
	bucket   []byte
	keySerde materialized.Serde[K]
	valSerde materialized.Serde[V]
}

var _ CellStore[any, any] = &boltDBCellStore[any, any]{}

func (cs *boltDBCellStore[K, V]) Get(key K) (cell *memcell.MemoryCell[V], err error) {
	_ = cs.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cs.bucket)
		bv := b.Get(cs.keySerde.Serialize(key))
		if bv == nil {
			err = errors.New("cannot find value")
			return nil
		}
		curSer, lastSer, hasLast := decodeCellRecord(bv)

		var last V
		if hasLast {
			last = cs.valSerde.Deserialize(lastSer)
		}
		cell = memcell.WithLast(cs.valSerde.Deserialize(curSer), last, hasLast)
		return nil
	})
	return
}

func (cs *boltDBCellStore[K, V]) Update(key K, value V) {
	_ = cs.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cs.bucket)
		keySer := cs.keySerde.Serialize(key)
		valSer := cs.valSerde.Serialize(value)

		bv := b.Get(keySer)
		if bv == nil {
			return b.Put(keySer, encodeCellRecord(valSer, nil, false))
		}
		curSer, _, _ := decodeCellRecord(bv)
		return b.Put(keySer, encodeCellRecord(valSer, curSer, true))
	})
}

func (cs *boltDBCellStore[K, V]) Delete(key K) {
	_ = cs.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cs.bucket)
		return b.Delete(cs.keySerde.Serialize(key))
	})
}

func (cs *boltDBCellStore[K, V]) Close() error {
	return closeBoltDB(cs.dbPath)
}

// record layout: 1 byte presence flag for the previous value,
// 4 bytes big-endian length of the current value, current bytes,
// previous bytes.
func encodeCellRecord(cur, last []byte, hasLast bool) []byte {
	rec := make([]byte, 0, 5+len(cur)+len(last))

	flag := byte(0)
	if hasLast {
		flag = 1
	}
	rec = append(rec, flag)
	rec = binary.BigEndian.AppendUint32(rec, uint32(len(cur)))
	rec = append(rec, cur...)
	if hasLast {
		rec = append(rec, last...)
	}
	return rec
}

func decodeCellRecord(rec []byte) (cur, last []byte, hasLast bool) {
	hasLast = rec[0] == 1
	curLen := binary.BigEndian.Uint32(rec[1:5])
	cur = rec[5 : 5+curLen]
	if hasLast {
		last = rec[5+curLen:]
	}
	return cur, last, hasLast
}
