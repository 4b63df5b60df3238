// Command bptreebench drives a mixed insert/find/delete/range workload
// against pkg/bptree and, for scale comparison, a create/read workload of
// the same size against a pkg/storage-backed pebble.DB instance.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/cedarkv/bptree/pkg/bptree"
	"github.com/cedarkv/bptree/pkg/storage"
)

func byteCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}

func main() {
	n := flag.Int("n", 100000, "number of keys in the workload")
	order := flag.Int("order", 64, "bptree branching factor")
	pebbleDir := flag.String("pebble-dir", "", "directory for the pebble comparison store (temp dir if empty)")
	seed := flag.Int64("seed", 1, "random seed for key generation")
	flag.Parse()

	keys := generateKeys(*n, *seed)

	if err := runBPTreeWorkload(keys, *order); err != nil {
		fmt.Fprintf(os.Stderr, "bptree workload failed: %v\n", err)
		os.Exit(1)
	}

	if err := runPebbleWorkload(keys, *pebbleDir); err != nil {
		fmt.Fprintf(os.Stderr, "pebble workload failed: %v\n", err)
		os.Exit(1)
	}
}

func generateKeys(n int, seed int64) [][]byte {
	r := rand.New(rand.NewSource(seed))
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%010d", r.Int63n(int64(n)*10)))
	}
	return keys
}

func runBPTreeWorkload(keys [][]byte, order int) error {
	tree, err := bptree.New[[]byte, []byte](order, byteCompare, nil)
	if err != nil {
		return err
	}
	defer tree.Close()

	value := bytes.Repeat([]byte("v"), 64)

	start := time.Now()
	inserted := 0
	for _, k := range keys {
		if err := tree.Insert(k, value); err == nil {
			inserted++
		}
	}
	insertElapsed := time.Since(start)

	start = time.Now()
	for _, k := range keys {
		_, _, _ = tree.Find(k)
	}
	findElapsed := time.Since(start)

	start = time.Now()
	deleted := 0
	for i, k := range keys {
		if i%2 != 0 {
			continue
		}
		if tree.Delete(k) == nil {
			deleted++
		}
	}
	deleteElapsed := time.Since(start)

	lo, hi := keys[0], keys[len(keys)-1]
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	out := make([][]byte, 1000)
	start = time.Now()
	n, err := tree.Range(lo, hi, out)
	rangeElapsed := time.Since(start)
	if err != nil {
		return err
	}

	fmt.Println("=== pkg/bptree ===")
	fmt.Printf("insert: %d ok in %v (%.0f ops/s)\n", inserted, insertElapsed, opsPerSec(inserted, insertElapsed))
	fmt.Printf("find:   %d lookups in %v (%.0f ops/s)\n", len(keys), findElapsed, opsPerSec(len(keys), findElapsed))
	fmt.Printf("delete: %d ok in %v (%.0f ops/s)\n", deleted, deleteElapsed, opsPerSec(deleted, deleteElapsed))
	fmt.Printf("range:  %d values in %v\n", n, rangeElapsed)
	fmt.Printf("final tree length: %d\n", tree.Len())
	return nil
}

func runPebbleWorkload(keys [][]byte, dir string) error {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "bptreebench-pebble")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	store, err := storage.NewDefaultStorage(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	value := bytes.Repeat([]byte("v"), 64)
	ids := make([]*ksuid.KSUID, 0, len(keys))

	start := time.Now()
	for range keys {
		id, err := store.Create(value)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	insertElapsed := time.Since(start)

	start = time.Now()
	for _, id := range ids {
		if _, err := store.Read(id); err != nil {
			return err
		}
	}
	readElapsed := time.Since(start)

	fmt.Println("=== pkg/storage (pebble) ===")
	fmt.Printf("create: %d ok in %v (%.0f ops/s)\n", len(ids), insertElapsed, opsPerSec(len(ids), insertElapsed))
	fmt.Printf("read:   %d ok in %v (%.0f ops/s)\n", len(ids), readElapsed, opsPerSec(len(ids), readElapsed))
	return nil
}

func opsPerSec(n int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}
