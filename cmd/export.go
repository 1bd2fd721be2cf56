package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kabu-lab/kabuscreen/internal/export"
)

var (
	exportInput      string
	exportLimit      int
	exportOutput     string
	exportIncludeETF bool
	exportEncoding   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch fundamentals for the universe and export the screening CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pipeline, st, err := newExportPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := pipeline.Run(ctx, exportOptions())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d/%d tickers to %s\n",
			res.FetchedCount, res.TickerCount, res.OutputPath)
		return nil
	},
}

func exportOptions() export.Options {
	input := exportInput
	if input == "" {
		input = cfg.Export.InputPath
	}
	output := exportOutput
	if output == "" {
		output = cfg.Export.OutputDir
	}
	encoding := exportEncoding
	if encoding == "" {
		encoding = cfg.Export.Encoding
	}
	return export.Options{
		InputPath:  input,
		Limit:      exportLimit,
		OutputDir:  output,
		IncludeETF: exportIncludeETF,
		Encoding:   encoding,
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "listed-issues file, TSV or XLSX (default from config)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "max tickers to fetch (0 = all)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output directory (default from config)")
	exportCmd.Flags().BoolVar(&exportIncludeETF, "include-etf", false, "keep ETF/ETN rows in the universe")
	exportCmd.Flags().StringVar(&exportEncoding, "encoding", "", "input encoding: utf-8 or shift_jis (default from config)")
	rootCmd.AddCommand(exportCmd)
}
