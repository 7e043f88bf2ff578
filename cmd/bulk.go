package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/analytics"
	"github.com/sells-group/company-match/internal/company"
)

var (
	bulkCrawl  bool
	bulkOutput string
	bulkLimit  int
)

type bulkOutputSummary struct {
	company.BulkSummary
	Analytics *analytics.Report `json:"analytics,omitempty"`
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Bulk-resolve the query sample and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := []string{"bulk"}
		if bulkCrawl {
			modes = append(modes, "crawl")
		}
		env, err := initEnv(cmd.Context(), modes...)
		if err != nil {
			return err
		}

		var crawlReport *analytics.Report
		if bulkCrawl {
			if crawlReport, err = env.crawlWebsites(cmd.Context()); err != nil {
				return err
			}
		}

		report, err := env.runSample(cmd.Context(), bulkLimit)
		if err != nil {
			return err
		}

		if bulkOutput != "" {
			if err := writeJSONFile(bulkOutput, report); err != nil {
				return err
			}
			zap.L().Info("bulk report written", zap.String("path", bulkOutput))
		}

		return writeJSON(cmd.OutOrStdout(), bulkOutputSummary{
			BulkSummary: report.Summary(sampleSize),
			Analytics:   crawlReport,
		})
	},
}

func init() {
	f := bulkCmd.Flags()
	f.BoolVar(&bulkCrawl, "crawl", false, "crawl the websites list and fuse before resolving")
	f.StringVar(&bulkOutput, "output", "", "write the full report as JSON to this file")
	f.IntVar(&bulkLimit, "limit", 0, "max queries to resolve (0 = all)")
	rootCmd.AddCommand(bulkCmd)
}
