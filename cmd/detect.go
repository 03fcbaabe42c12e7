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

	"github.com/valpere/transqc/internal/detector"
)

var detectJSON bool

var detectCmd = &cobra.Command{
	Use:   "detect TEXT...",
	Short: "Detect the language of one or more texts",
	Long: `Classify each text as Korean (ko), Japanese (ja), English (en) or unknown,
then report the aggregate language of all texts together, the way a batch is
classified before translation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		det := detector.New()

		results := make([]detector.Result, len(args))
		for i, text := range args {
			results[i] = det.Detect(text)
		}
		aggregate := det.DetectMany(args)

		if detectJSON {
			return writeJSON("", map[string]any{
				"results":   results,
				"aggregate": aggregate,
			})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANG\tCONFIDENCE\tTEXT")
		for i, r := range results {
			fmt.Fprintf(w, "%s\t%.2f\t%s\n", r.Language, r.Confidence, snippet(args[i], 40))
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", aggregate.Language, aggregate.Confidence, "(aggregate)")
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print results as JSON")
}

// snippet shortens text to at most n runes for table output.
func snippet(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return text
}
