package main

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/serhiishtokal/CourseWatcher/internal/scanner"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

func newScanCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a one-shot library scan and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.DataDir(), storage.Options{})
			if err != nil {
				return err
			}
			defer store.Close()

			sc := scanner.New(store, cfg.DataDirName)
			result, err := sc.Scan(context.Background(), cfg.Root)
			if err != nil {
				return err
			}

			renderScanResult(result)
			return nil
		},
	}
}

func renderScanResult(result scanner.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Total", "Added", "Already Present", "Skipped"})
	t.AppendRow(table.Row{result.Total, result.Added, result.AlreadyPresent, len(result.Skipped)})
	t.Render()

	if len(result.Skipped) == 0 {
		return
	}
	skipped := table.NewWriter()
	skipped.SetOutputMirror(os.Stdout)
	skipped.AppendHeader(table.Row{"Skipped Path", "Reason"})
	for _, sp := range result.Skipped {
		skipped.AppendRow(table.Row{sp.Path, sp.Reason})
	}
	skipped.Render()
}
