package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "crawler",
		Short:        "Crawl completed real-estate transactions into a deduplicated store",
		SilenceUsage: true,
	}
	root.AddCommand(newCrawlCmd(), newMigrateCmd())
	return root
}
