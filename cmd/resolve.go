package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-match/internal/model"
)

var resolveQuery model.MatchQuery

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve one query against the catalog and print the match as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if resolveQuery.IsEmpty() {
			return eris.New("at least one of --name, --website, --phone, --facebook is required")
		}

		env, err := initEnv(cmd.Context(), "resolve")
		if err != nil {
			return err
		}

		res, err := env.Service.Resolve(resolveQuery)
		if err != nil {
			return eris.Wrap(err, "resolve")
		}
		if res == nil {
			return eris.New(msgNoMatch)
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveQuery.Name, "name", "", "company name")
	f.StringVar(&resolveQuery.Website, "website", "", "company website or domain")
	f.StringVar(&resolveQuery.Phone, "phone", "", "phone number")
	f.StringVar(&resolveQuery.Facebook, "facebook", "", "facebook page URL")
	rootCmd.AddCommand(resolveCmd)
}
