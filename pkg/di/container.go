// Package di wires pkg/config, pkg/bptree, pkg/index, and pkg/api
// together behind a small container, with setter overrides so tests can
// substitute fakes for any dependency.
package di

import (
	"strings"

	"github.com/cedarkv/bptree/pkg/api"
	"github.com/cedarkv/bptree/pkg/bptree"
	"github.com/cedarkv/bptree/pkg/config"
	"github.com/cedarkv/bptree/pkg/index"
)

func stringCompare(a, b string) int {
	return strings.Compare(a, b)
}

// Container holds all the dependencies for the application.
type Container struct {
	config        *config.Config
	tree          *bptree.Tree[string, []byte]
	indexManager  *index.IndexManager
	serverFactory api.ServerFactory
}

// NewContainer builds a container from cfg: a fresh bptree.Tree sized by
// cfg.Tree.Order, an IndexManager sharing that order, and the default
// server factory.
func NewContainer(cfg *config.Config) (*Container, error) {
	tree, err := bptree.New[string, []byte](cfg.Tree.Order, stringCompare, nil)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:        cfg,
		tree:          tree,
		indexManager:  index.NewIndexManager(cfg.Tree.Order),
		serverFactory: api.NewServerFactory(),
	}, nil
}

// GetTree returns the container's index tree.
func (c *Container) GetTree() *bptree.Tree[string, []byte] {
	return c.tree
}

// GetIndexManager returns the container's secondary-index manager.
func (c *Container) GetIndexManager() *index.IndexManager {
	return c.indexManager
}

// GetServerFactory returns the server factory.
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing).
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// ServerConfig derives an api.ServerConfig from the container's config.
func (c *Container) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Bind:   c.config.API.Bind,
		Port:   c.config.API.Port,
		APIKey: c.config.API.APIKey,
	}
}
