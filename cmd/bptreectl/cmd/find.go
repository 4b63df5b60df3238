package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// findCmd represents the find command.
var findCmd = &cobra.Command{
	Use:   "find <key>",
	Short: "Find the value stored under a key",
	Long: `Find the value for a key in the index.

Example:
  bptreectl find mykey`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := []byte(args[0])

		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		value, ok, err := tree.Find(key)
		if err != nil {
			return fmt.Errorf("failed to find key %q: %w", args[0], err)
		}
		if !ok {
			fmt.Printf("key %q not found\n", args[0])
			return nil
		}

		fmt.Printf("%s\n", string(value))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
