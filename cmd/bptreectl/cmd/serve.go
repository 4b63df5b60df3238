package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cedarkv/bptree/pkg/api"
	"github.com/cedarkv/bptree/pkg/bptree"
)

// byteTreeIndexer adapts the []byte-keyed tree bptreectl persists to
// api.Indexer's string-keyed surface, so the same index a user built up
// with insert/find/delete/range can also be served over HTTP.
type byteTreeIndexer struct {
	tree *bptree.Tree[[]byte, []byte]
}

func (b byteTreeIndexer) Insert(key string, value []byte) error {
	return b.tree.Insert([]byte(key), value)
}

func (b byteTreeIndexer) Find(key string) ([]byte, bool, error) {
	return b.tree.Find([]byte(key))
}

func (b byteTreeIndexer) Delete(key string) error {
	return b.tree.Delete([]byte(key))
}

func (b byteTreeIndexer) Range(lo, hi string, out [][]byte) (int, error) {
	return b.tree.Range([]byte(lo), []byte(hi), out)
}

func (b byteTreeIndexer) Len() int {
	return b.tree.Len()
}

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over HTTP",
	Long: `Start an HTTP server exposing the index loaded from the data file
over the bptree API. Changes made over HTTP stay in memory; serve does
not write the index back to the data file.

Example:
  bptreectl serve --api-key=mysecretkey --port=8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bind, _ := cmd.Flags().GetString("bind")
		port, _ := cmd.Flags().GetInt("port")
		apiKey, _ := cmd.Flags().GetString("api-key")

		if apiKey == "" {
			return fmt.Errorf("--api-key is required")
		}

		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		config := api.ServerConfig{
			Bind:   bind,
			Port:   port,
			APIKey: apiKey,
		}
		return api.StartServer(byteTreeIndexer{tree: tree}, config)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key for authentication (required)")
}
