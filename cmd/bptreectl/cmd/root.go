/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cedarkv/bptree/pkg/bptree"
	"github.com/cedarkv/bptree/pkg/serialize"
)

type treeContextKey struct{}

const dataFileFlag = "data-file"

func byteCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bptreectl",
	Short: "bptreectl - a command-line front end for an in-memory B+ tree index",
	Long: `bptreectl loads a []byte-keyed, []byte-valued B+ tree index from
a data file (via pkg/serialize), applies one command, then saves it back.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataFile, _ := cmd.Flags().GetString(dataFileFlag)
		order, _ := cmd.Flags().GetInt("order")

		tree, err := loadOrCreateTree(dataFile, order)
		if err != nil {
			return fmt.Errorf("failed to load tree: %w", err)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), treeContextKey{}, tree))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP(dataFileFlag, "f", "./bptree.dat", "Data file backing the index")
	rootCmd.PersistentFlags().IntP("order", "o", 32, "Branching factor to use when creating a new index")
}

func loadOrCreateTree(dataFile string, order int) (*bptree.Tree[[]byte, []byte], error) {
	f, err := os.Open(dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return bptree.New[[]byte, []byte](order, byteCompare, nil)
		}
		return nil, err
	}
	defer f.Close()

	return serialize.Read[[]byte, []byte](f, order, byteCompare, nil, serialize.BytesCodec{}, serialize.BytesCodec{})
}

func treeFromContext(cmd *cobra.Command) (*bptree.Tree[[]byte, []byte], error) {
	tree, ok := cmd.Context().Value(treeContextKey{}).(*bptree.Tree[[]byte, []byte])
	if !ok {
		return nil, fmt.Errorf("tree not found in command context")
	}
	return tree, nil
}

func saveTree(cmd *cobra.Command, tree *bptree.Tree[[]byte, []byte]) error {
	dataFile, _ := cmd.Flags().GetString(dataFileFlag)

	f, err := os.Create(dataFile)
	if err != nil {
		return fmt.Errorf("failed to open data file for writing: %w", err)
	}
	defer f.Close()

	return serialize.Write[[]byte, []byte](f, tree.Snapshot(), serialize.BytesCodec{}, serialize.BytesCodec{})
}
