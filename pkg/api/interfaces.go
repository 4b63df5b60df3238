// Package api provides interfaces for dependency injection
package api

//go:generate mockgen -source=interfaces.go -destination=mock_indexer.go -package=api

// Indexer is the slice of pkg/bptree.Tree's public surface the HTTP
// layer depends on. Handlers and the server talk only to this
// interface, never to *bptree.Tree directly, so tests can substitute a
// generated mock instead of standing up a real tree.
type Indexer interface {
	// Insert stores value under key, failing with ErrDuplicateKey if key
	// is already present.
	Insert(key string, value []byte) error

	// Find returns the value stored under key, or ok=false if absent.
	Find(key string) (value []byte, ok bool, err error)

	// Delete removes key, failing with ErrNotFound if absent.
	Delete(key string) error

	// Range copies every value whose key falls within [lo, hi] into out,
	// in ascending key order, truncating at len(out). It returns the
	// number of values written.
	Range(lo, hi string, out [][]byte) (int, error)

	// Len reports the number of keys currently stored.
	Len() int
}

// ServerStarter defines the interface for starting the API server.
type ServerStarter interface {
	// StartServer starts the API server with the given configuration.
	StartServer(index Indexer, config ServerConfig) error
}

// ServerFactory creates server instances.
type ServerFactory interface {
	// CreateServerStarter creates a server starter.
	CreateServerStarter() ServerStarter
}
