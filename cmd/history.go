/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/transqc/internal/store"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the translation journal",
	Long:  `List recorded translation runs and show journal statistics.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent translation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(dbPathFor(historyDBPath), store.WithLowQualityThreshold(appCfg.LowQualityThreshold))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		entries, err := db.ListHistory(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries in the journal.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSOURCE\tTARGET\tPROVIDER\tGRADE\tFIELDS\tCREATED\tTEXT")
		for _, e := range entries {
			provider := e.Provider
			if provider == "" {
				provider = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				e.ID, e.Kind, e.SourceLang, e.TargetLang, provider,
				e.Grade, e.Fields, e.CreatedAt.Format("2006-01-02 15:04"),
				snippet(e.SourceText, 40))
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(dbPathFor(historyDBPath), store.WithLowQualityThreshold(appCfg.LowQualityThreshold))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Requests:        %d\n", stats.Requests)
		fmt.Printf("Batch requests:  %d\n", stats.BatchRequests)
		fmt.Printf("Quality reports: %d\n", stats.Reports)
		fmt.Printf("Low quality:     %d\n", stats.LowQuality)
		fmt.Printf("Average overall: %.2f\n", stats.AverageOverall)
		for provider, n := range stats.Wins {
			fmt.Printf("Wins (%s): %d\n", provider, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Database path (default: db_path from config)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
