package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command.
var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key",
	Long: `Delete a key from the index.

Example:
  bptreectl delete mykey`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := []byte(args[0])

		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		if err := tree.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key %q: %w", args[0], err)
		}

		if err := saveTree(cmd, tree); err != nil {
			return err
		}

		fmt.Printf("Deleted key %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
