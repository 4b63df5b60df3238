// Package serialize writes and reads a binary snapshot of a bptree.Tree.
// It is a collaborator, not part of the core: it walks the tree only
// through the exported Snapshot traversal hook and rebuilds a tree on
// read by replaying Insert calls in ascending key order, so the result
// is correct by construction even though the on-disk record layout
// (mirroring the tree's internal id/parent/child shape, grounded on the
// teacher's Save/LoadBPlusTree) is not itself re-parsed into a node
// graph. Each leaf entry's key/value pair is itself wrapped in a
// pkg/codec.Record, so every entry carries its own CRC32 and write
// timestamp independent of the whole-stream checksum in the trailer.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/cedarkv/bptree/pkg/bptree"
	"github.com/cedarkv/bptree/pkg/codec"
)

const (
	magicNumber   uint32 = 0x42505453 // "BPTS"
	formatVersion uint16 = 1
)

// KeyCodec converts a key to and from its on-disk byte representation.
type KeyCodec[K any] interface {
	EncodeKey(K) ([]byte, error)
	DecodeKey([]byte) (K, error)
}

// ValueCodec converts a value to and from its on-disk byte representation.
type ValueCodec[V any] interface {
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}

// BytesCodec is the identity KeyCodec/ValueCodec for []byte keys and
// values, the common case for pkg/bptree.Tree[[]byte, []byte].
type BytesCodec struct{}

func (BytesCodec) EncodeKey(k []byte) ([]byte, error)   { return k, nil }
func (BytesCodec) DecodeKey(b []byte) ([]byte, error)   { return append([]byte{}, b...), nil }
func (BytesCodec) EncodeValue(v []byte) ([]byte, error) { return v, nil }
func (BytesCodec) DecodeValue(b []byte) ([]byte, error) { return append([]byte{}, b...), nil }

type nodeRecord struct {
	id         uint32
	parentID   uint32
	keyCount   uint16
	isLeaf     bool
	nextLeafID uint32
	keys       [][]byte
	values     [][]byte
}

var recordCodec = codec.NewRecordCodec()

// Write walks snap (the result of Tree.Snapshot) and writes the format
// described in the collaborator spec: [magic(4)][version(2)][nodeCount(4)]
// [node records...][crc32(4) of everything before it].
func Write[K any, V any](w io.Writer, snap *bptree.SnapshotNode[K, V], keyCodec KeyCodec[K], valueCodec ValueCodec[V]) error {
	type walkEntry struct {
		node   *bptree.SnapshotNode[K, V]
		parent *bptree.SnapshotNode[K, V]
	}

	var order []*bptree.SnapshotNode[K, V]
	ids := map[*bptree.SnapshotNode[K, V]]uint32{}
	parents := map[*bptree.SnapshotNode[K, V]]*bptree.SnapshotNode[K, V]{}

	if snap != nil {
		stack := []walkEntry{{node: snap, parent: nil}}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			order = append(order, e.node)
			ids[e.node] = uint32(len(order))
			parents[e.node] = e.parent

			for i := len(e.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, walkEntry{node: e.node.Children[i], parent: e.node})
			}
		}
	}

	var body bytes.Buffer
	writeUint32(&body, magicNumber)
	writeUint16(&body, formatVersion)
	writeUint32(&body, uint32(len(order)))

	for _, n := range order {
		var parentID uint32
		if p := parents[n]; p != nil {
			parentID = ids[p]
		}
		var nextLeafID uint32
		if n.IsLeaf && n.NextLeaf != nil {
			nextLeafID = ids[n.NextLeaf]
		}

		writeUint32(&body, ids[n])
		writeUint32(&body, parentID)
		writeUint16(&body, uint16(len(n.Keys)))
		if n.IsLeaf {
			body.WriteByte(1)
		} else {
			body.WriteByte(0)
		}
		writeUint32(&body, nextLeafID)

		for i, key := range n.Keys {
			encKey, err := keyCodec.EncodeKey(key)
			if err != nil {
				return fmt.Errorf("serialize: encode key at node %d: %w", ids[n], err)
			}

			if !n.IsLeaf {
				writeBytes(&body, encKey)
				continue
			}

			encVal, err := valueCodec.EncodeValue(n.Values[i])
			if err != nil {
				return fmt.Errorf("serialize: encode value at node %d: %w", ids[n], err)
			}
			rec, err := recordCodec.Encode(encKey, encVal)
			if err != nil {
				return fmt.Errorf("serialize: encode record at node %d: %w", ids[n], err)
			}
			writeBytes(&body, rec)
		}
	}

	checksum := crc32.ChecksumIEEE(body.Bytes())

	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("serialize: write body: %w", err)
	}
	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], checksum)
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("serialize: write checksum: %w", err)
	}
	return nil
}

// Read parses a stream written by Write and rebuilds a tree with the
// given order, comparator, and destructor by replaying every leaf entry
// (in ascending key order, following the on-disk next-leaf chain from
// the leftmost leaf) through Insert.
func Read[K any, V any](r io.Reader, order int, compare bptree.Comparator[K], destroy bptree.Destructor[V], keyCodec KeyCodec[K], valueCodec ValueCodec[V]) (*bptree.Tree[K, V], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("serialize: read stream: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: stream too short for checksum trailer", bptree.ErrAllocationFailure)
	}

	body, trailer := data[:len(data)-4], data[len(data)-4:]
	want := binary.LittleEndian.Uint32(trailer)
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch: stored %08x, computed %08x", bptree.ErrAllocationFailure, want, got)
	}

	br := bytes.NewReader(body)

	magic, err := readUint32(br)
	if err != nil {
		return nil, fmt.Errorf("serialize: read magic: %w", err)
	}
	if magic != magicNumber {
		return nil, fmt.Errorf("%w: bad magic number %08x", bptree.ErrAllocationFailure, magic)
	}
	if _, err := readUint16(br); err != nil {
		return nil, fmt.Errorf("serialize: read version: %w", err)
	}
	nodeCount, err := readUint32(br)
	if err != nil {
		return nil, fmt.Errorf("serialize: read node count: %w", err)
	}

	records := make(map[uint32]*nodeRecord, nodeCount)
	var firstLeafID uint32

	for i := uint32(0); i < nodeCount; i++ {
		rec := &nodeRecord{}

		if rec.id, err = readUint32(br); err != nil {
			return nil, fmt.Errorf("serialize: read node id: %w", err)
		}
		if rec.parentID, err = readUint32(br); err != nil {
			return nil, fmt.Errorf("serialize: read parent id: %w", err)
		}
		if rec.keyCount, err = readUint16(br); err != nil {
			return nil, fmt.Errorf("serialize: read key count: %w", err)
		}
		leafByte, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("serialize: read leaf flag: %w", err)
		}
		rec.isLeaf = leafByte == 1
		if rec.nextLeafID, err = readUint32(br); err != nil {
			return nil, fmt.Errorf("serialize: read next leaf id: %w", err)
		}

		for k := uint16(0); k < rec.keyCount; k++ {
			if !rec.isLeaf {
				key, err := readBytes(br)
				if err != nil {
					return nil, fmt.Errorf("serialize: read key: %w", err)
				}
				rec.keys = append(rec.keys, key)
				continue
			}

			blob, err := readBytes(br)
			if err != nil {
				return nil, fmt.Errorf("serialize: read record: %w", err)
			}
			entry, err := recordCodec.Decode(blob)
			if err != nil {
				return nil, fmt.Errorf("serialize: decode record: %w", err)
			}
			if err := entry.Validate(); err != nil {
				return nil, fmt.Errorf("serialize: validate record: %w", err)
			}
			rec.keys = append(rec.keys, entry.Key)
			rec.values = append(rec.values, entry.Value)
		}

		records[rec.id] = rec
		if rec.isLeaf && firstLeafID == 0 {
			firstLeafID = rec.id
		}
	}

	tree, err := bptree.New[K, V](order, compare, destroy)
	if err != nil {
		return nil, err
	}

	for id := firstLeafID; id != 0; {
		rec, ok := records[id]
		if !ok {
			return nil, fmt.Errorf("%w: dangling next-leaf id %d", bptree.ErrAllocationFailure, id)
		}
		for i, encKey := range rec.keys {
			key, err := keyCodec.DecodeKey(encKey)
			if err != nil {
				return nil, fmt.Errorf("serialize: decode key: %w", err)
			}
			value, err := valueCodec.DecodeValue(rec.values[i])
			if err != nil {
				return nil, fmt.Errorf("serialize: decode value: %w", err)
			}
			if err := tree.Insert(key, value); err != nil {
				return nil, fmt.Errorf("serialize: replay insert: %w", err)
			}
		}
		id = rec.nextLeafID
	}

	return tree, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
