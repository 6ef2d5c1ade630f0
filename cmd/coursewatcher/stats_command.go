package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/serhiishtokal/CourseWatcher/internal/library"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

func newStatsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print watch-progress statistics for the library",
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

			svc := library.New(store, cfg.CompletionThreshold)
			stats, err := svc.LibraryStats(context.Background())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Total", "Completed", "In Progress", "Unwatched", "Complete"})
			t.AppendRow(table.Row{
				stats.Total,
				stats.Completed,
				stats.InProgress,
				stats.Unwatched,
				fmt.Sprintf("%d%%", stats.PercentComplete),
			})
			t.Render()
			return nil
		},
	}
}
