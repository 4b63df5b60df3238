// Package index adapts pkg/bptree into a secondary index: given a field
// value and the primary key (a ksuid.KSUID) of the record that carries
// it, it maintains an ordered index keyed by field_value+primary_key, so
// lookups by field value return every primary key with that value in
// primary-key order, and range queries over field values fall directly
// out of the core's own Range.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/cedarkv/bptree/pkg/bptree"
	"github.com/cedarkv/bptree/pkg/serialize"
)

func byteKeyCompare(a, b string) int {
	return bytes.Compare([]byte(a), []byte(b))
}

// SecondaryIndex maintains an ordered index over one field of a record
// collection, backed by a generic bptree.Tree[string, ksuid.KSUID].
type SecondaryIndex struct {
	fieldName string
	tree      *bptree.Tree[string, ksuid.KSUID]
	order     int
	mutex     sync.RWMutex
}

// NewSecondaryIndex creates a new secondary index for a field.
func NewSecondaryIndex(fieldName string, order int) *SecondaryIndex {
	tree, err := bptree.New[string, ksuid.KSUID](order, byteKeyCompare, nil)
	if err != nil {
		// NewIndexManager and GetOrCreateIndex pass order through
		// unchecked, so an order below 3 panics here.
		panic(fmt.Sprintf("index: invalid order %d: %v", order, err))
	}
	return &SecondaryIndex{
		fieldName: fieldName,
		tree:      tree,
		order:     order,
	}
}

// Insert adds a record to the secondary index. The index key is
// field_value + primary_key, which keeps every index key unique even
// when many records share a field value.
func (idx *SecondaryIndex) Insert(fieldValue interface{}, primaryKey ksuid.KSUID) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	indexKey := idx.createIndexKey(fieldValue, primaryKey)
	if err := idx.tree.Insert(indexKey, primaryKey); err != nil {
		return fmt.Errorf("index: insert into %q: %w", idx.fieldName, err)
	}
	return nil
}

// Delete removes a record from the secondary index. It reports whether
// the entry was present.
func (idx *SecondaryIndex) Delete(fieldValue interface{}, primaryKey ksuid.KSUID) bool {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	indexKey := idx.createIndexKey(fieldValue, primaryKey)
	return idx.tree.Delete(indexKey) == nil
}

// Search finds every primary key recorded against an exact field value.
func (idx *SecondaryIndex) Search(fieldValue interface{}) ([]ksuid.KSUID, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	prefix := idx.createFieldPrefix(fieldValue)
	lo := prefix
	hi := prefix + string(bytes.Repeat([]byte{0xFF}, len(ksuid.KSUID{})))

	list, err := idx.tree.RangeList(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("index: search %q: %w", idx.fieldName, err)
	}
	return list.ToSlice(), nil
}

// SearchRange finds every primary key whose field value falls within
// [startValue, endValue] inclusive, ordered by field value then primary
// key.
func (idx *SecondaryIndex) SearchRange(startValue, endValue interface{}) ([]ksuid.KSUID, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	lo := idx.createFieldPrefix(startValue)
	hi := idx.createFieldPrefix(endValue) + string(bytes.Repeat([]byte{0xFF}, len(ksuid.KSUID{})))

	list, err := idx.tree.RangeList(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("index: search range %q: %w", idx.fieldName, err)
	}
	return list.ToSlice(), nil
}

// ksuidCodec adapts string index keys and ksuid.KSUID values to
// pkg/serialize's KeyCodec/ValueCodec interfaces.
type ksuidCodec struct{}

func (ksuidCodec) EncodeKey(k string) ([]byte, error) { return []byte(k), nil }
func (ksuidCodec) DecodeKey(b []byte) (string, error) { return string(b), nil }

func (ksuidCodec) EncodeValue(v ksuid.KSUID) ([]byte, error) { return v.Bytes(), nil }
func (ksuidCodec) DecodeValue(b []byte) (ksuid.KSUID, error) { return ksuid.FromBytes(b) }

// Save persists the index to disk.
func (idx *SecondaryIndex) Save(dir string) error {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	filename := filepath.Join(dir, fmt.Sprintf("index_%s.dat", idx.fieldName))
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("index: save %q: %w", idx.fieldName, err)
	}
	defer f.Close()

	return serialize.Write[string, ksuid.KSUID](f, idx.tree.Snapshot(), ksuidCodec{}, ksuidCodec{})
}

// Load restores the index from disk. If the index file doesn't exist
// yet, Load leaves the index empty and returns no error.
func (idx *SecondaryIndex) Load(dir string) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	filename := filepath.Join(dir, fmt.Sprintf("index_%s.dat", idx.fieldName))
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("index: load %q: %w", idx.fieldName, err)
	}
	defer f.Close()

	tree, err := serialize.Read[string, ksuid.KSUID](f, idx.order, byteKeyCompare, nil, ksuidCodec{}, ksuidCodec{})
	if err != nil {
		return fmt.Errorf("index: load %q: %w", idx.fieldName, err)
	}

	idx.tree = tree
	return nil
}

// createIndexKey creates a composite key: field_value + primary_key.
func (idx *SecondaryIndex) createIndexKey(fieldValue interface{}, primaryKey ksuid.KSUID) string {
	var buf bytes.Buffer
	idx.serializeValue(&buf, fieldValue)
	buf.Write(primaryKey.Bytes())
	return buf.String()
}

// createFieldPrefix creates a key prefix for field value matching.
func (idx *SecondaryIndex) createFieldPrefix(fieldValue interface{}) string {
	var buf bytes.Buffer
	idx.serializeValue(&buf, fieldValue)
	return buf.String()
}

// serializeValue serializes different value types for indexing, leading
// with a type marker so distinct types never collide in ordering.
func (idx *SecondaryIndex) serializeValue(buf *bytes.Buffer, value interface{}) {
	switch v := value.(type) {
	case int:
		buf.WriteByte(0)
		binary.Write(buf, binary.BigEndian, int64(v))
	case int64:
		buf.WriteByte(0)
		binary.Write(buf, binary.BigEndian, v)
	case float64:
		buf.WriteByte(1)
		binary.Write(buf, binary.BigEndian, v)
	case string:
		buf.WriteByte(2)
		buf.WriteString(v)
		buf.WriteByte(0)
	default:
		buf.WriteByte(2)
		fmt.Fprintf(buf, "%v", v)
		buf.WriteByte(0)
	}
}

// IndexManager manages multiple secondary indexes for a partition.
type IndexManager struct {
	indexes map[string]*SecondaryIndex
	mutex   sync.RWMutex
	order   int
}

// NewIndexManager creates a new index manager.
func NewIndexManager(order int) *IndexManager {
	return &IndexManager{
		indexes: make(map[string]*SecondaryIndex),
		order:   order,
	}
}

// GetOrCreateIndex gets an existing index or creates a new one for a
// field.
func (im *IndexManager) GetOrCreateIndex(fieldName string) *SecondaryIndex {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	if idx, exists := im.indexes[fieldName]; exists {
		return idx
	}

	idx := NewSecondaryIndex(fieldName, im.order)
	im.indexes[fieldName] = idx
	return idx
}

// SaveAll saves all indexes to disk.
func (im *IndexManager) SaveAll(dir string) error {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	for _, idx := range im.indexes {
		if err := idx.Save(dir); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll loads all indexes found in dir.
func (im *IndexManager) LoadAll(dir string) error {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	pattern := filepath.Join(dir, "index_*.dat")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, file := range files {
		filename := filepath.Base(file)
		if len(filename) < 10 { // "index_.dat" is 10 chars minimum
			continue
		}
		fieldName := filename[len("index_") : len(filename)-len(".dat")]

		idx := NewSecondaryIndex(fieldName, im.order)
		if err := idx.Load(dir); err != nil {
			return err
		}
		im.indexes[fieldName] = idx
	}

	return nil
}
