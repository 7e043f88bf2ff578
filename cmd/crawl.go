package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/company-match/internal/analytics"
	"github.com/sells-group/company-match/internal/company"
)

var crawlResolve bool

type crawlOutput struct {
	Analytics *analytics.Report    `json:"analytics"`
	Bulk      *company.BulkSummary `json:"bulk,omitempty"`
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the websites list, fuse the results into the catalog and print analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := []string{"crawl"}
		if crawlResolve {
			modes = append(modes, "bulk")
		}
		env, err := initEnv(cmd.Context(), modes...)
		if err != nil {
			return err
		}

		report, err := env.crawlWebsites(cmd.Context())
		if err != nil {
			return err
		}
		out := crawlOutput{Analytics: report}

		if crawlResolve {
			bulk, err := env.runSample(cmd.Context(), 0)
			if err != nil {
				return err
			}
			sum := bulk.Summary(sampleSize)
			out.Bulk = &sum
		}

		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlResolve, "resolve", false, "bulk-resolve the query sample after fusion")
	rootCmd.AddCommand(crawlCmd)
}
