package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kabu-lab/kabuscreen/internal/universe"
)

var (
	universeInput      string
	universeLimit      int
	universeIncludeETF bool
	universeEncoding   string
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Parse the listed-issues file and print the resulting tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := universeInput
		if input == "" {
			input = cfg.Export.InputPath
		}
		encoding := universeEncoding
		if encoding == "" {
			encoding = cfg.Export.Encoding
		}

		tickers, err := universe.ReadTickers(input, universe.Options{
			Limit:      universeLimit,
			IncludeETF: universeIncludeETF,
			Encoding:   encoding,
		})
		if err != nil {
			return err
		}

		for _, t := range tickers {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d tickers\n", len(tickers))
		return nil
	},
}

func init() {
	universeCmd.Flags().StringVar(&universeInput, "input", "", "listed-issues file, TSV or XLSX (default from config)")
	universeCmd.Flags().IntVar(&universeLimit, "limit", 0, "max tickers to print (0 = all)")
	universeCmd.Flags().BoolVar(&universeIncludeETF, "include-etf", false, "keep ETF/ETN rows")
	universeCmd.Flags().StringVar(&universeEncoding, "encoding", "", "input encoding: utf-8 or shift_jis (default from config)")
	rootCmd.AddCommand(universeCmd)
}
