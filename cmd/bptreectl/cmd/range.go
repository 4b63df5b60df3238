package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rangeCmd represents the range command.
var rangeCmd = &cobra.Command{
	Use:   "range <lo> <hi>",
	Short: "List every value whose key falls within [lo, hi]",
	Long: `Scan the index for every key in [lo, hi], printing the values in
ascending key order.

Example:
  bptreectl range a m`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lo := []byte(args[0])
		hi := []byte(args[1])
		limit, _ := cmd.Flags().GetInt("limit")

		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		out := make([][]byte, limit)
		n, err := tree.Range(lo, hi, out)
		if err != nil {
			return fmt.Errorf("failed to range scan [%q, %q]: %w", args[0], args[1], err)
		}

		for _, v := range out[:n] {
			fmt.Printf("%s\n", string(v))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().Int("limit", 1000, "Maximum number of values to return")
}
