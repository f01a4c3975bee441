package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bert82503/regioncache"
	"github.com/bert82503/regioncache/batch"
)

var countCmd = &cobra.Command{
	Use:   "count <region> [regions...]",
	Short: "Count entries per region",
	Long:  "Walk each region's key space with SCAN and report how many entries it holds.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCount,
}

func init() {
	countCmd.Flags().Int("batch-size", 100, "SCAN page size hint")
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	cli := newClient()
	defer cli.Close()

	size, _ := cmd.Flags().GetInt("batch-size")
	conn := regioncache.NewConn(cli)

	var total int64
	for _, name := range args {
		cursor := conn.Scan(cmd.Context(), batch.ScanOptions{Match: name + "::*", Count: int64(size)})
		var n int64
		for cursor.Next(cmd.Context()) {
			n++
		}
		if err := cursor.Err(); err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		fmt.Printf("%s\t%d\n", name, n)
		total += n
	}

	fmt.Fprintf(os.Stderr, "Total: %d entries\n", total)
	return nil
}
