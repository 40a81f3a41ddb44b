package commands

import (
	"github.com/spf13/cobra"

	"facebook-extractor/internal/scraper"
)

func init() {
	rootCmd.AddCommand(extractCookiesCmd)
}

var extractCookiesCmd = &cobra.Command{
	Use:   "extract-cookies",
	Short: "Prints instructions for exporting Facebook cookies from a browser.",
	Run: func(cmd *cobra.Command, args []string) {
		scraper.ExtractCookiesFromBrowser()
	},
}
