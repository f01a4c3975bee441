package cmd

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/bert82503/regioncache"
	"github.com/bert82503/regioncache/batch"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <region> [regions...]",
	Short: "Clear cache regions",
	Long:  "Remove every entry of the named regions using the selected batch strategy.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("scan", false, "sweep with SCAN instead of KEYS")
	cleanCmd.Flags().Int("batch-size", 100, "keys per delete when sweeping with SCAN")
	cleanCmd.Flags().Int("jobs", 4, "regions cleared in parallel")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cli := newClient()
	defer cli.Close()

	strategy := batch.Keys()
	if scan, _ := cmd.Flags().GetBool("scan"); scan {
		size, _ := cmd.Flags().GetInt("batch-size")
		var err error
		if strategy, err = batch.Scan(size); err != nil {
			return err
		}
	}

	writer := regioncache.NewWriter(cli, regioncache.WithBatchStrategy(strategy))

	jobs, _ := cmd.Flags().GetInt("jobs")
	var total atomic.Int64
	p := pool.New().WithMaxGoroutines(jobs).WithContext(cmd.Context()).WithCancelOnError()
	for _, name := range args {
		p.Go(func(ctx context.Context) error {
			removed, err := writer.Clean(ctx, name, name+"::*")
			if err != nil {
				return fmt.Errorf("clean %s: %w", name, err)
			}
			total.Add(removed)
			fmt.Fprintf(os.Stderr, "Cleared %s: %d entries\n", name, removed)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Done. Removed %d entries\n", total.Load())
	return nil
}
