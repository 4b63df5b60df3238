package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// insertCmd represents the insert command.
var insertCmd = &cobra.Command{
	Use:   "insert <key> <value>",
	Short: "Insert a key-value pair",
	Long: `Insert a key-value pair into the index.

Example:
  bptreectl insert mykey myvalue`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := []byte(args[0])
		value := []byte(args[1])

		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		if err := tree.Insert(key, value); err != nil {
			return fmt.Errorf("failed to insert key %q: %w", args[0], err)
		}

		if err := saveTree(cmd, tree); err != nil {
			return err
		}

		fmt.Printf("Inserted key %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
}
