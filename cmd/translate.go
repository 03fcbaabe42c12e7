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
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/arbiter"
)

var (
	inputFile   string
	outputFile  string
	inputText   string
	hintContext string
	dbPath      string
	noJournal   bool
	outputJSON  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text with every provider and keep the best candidate",
	Long: `Translate a single text with all configured providers in parallel.
Providers that fail are skipped; the surviving candidate with the highest
configured prior wins and is graded against the source.

Provide the text with --text or read it from a file with --input.
The winning translation is written to --output (stdout when omitted); the
selection summary is printed to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (inputText == "") == (inputFile == "") {
			return fmt.Errorf("exactly one of --text or --input is required")
		}
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text := inputText
		if inputFile != "" {
			strInp, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = string(strInp)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to translate")
		}

		ctx := cmd.Context()

		arb, err := buildArbiter(appCfg)
		if err != nil {
			return err
		}

		sel, err := arb.Translate(ctx, text, hintContext)
		if err != nil {
			return err
		}

		db, err := openStore(dbPathFor(dbPath), noJournal)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			if _, err := db.RecordSelection(ctx, text, appCfg.TargetLang, hintContext, sel); err != nil {
				logger.Warn("failed to journal selection", zap.Error(err))
			}
		}

		printSelection(sel)

		if outputJSON {
			return writeJSON(outputFile, sel)
		}
		return writeOutput(outputFile, []byte(sel.Best.Text+"\n"))
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&inputText, "text", "", "Text to translate")
	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	translateCmd.Flags().StringVar(&hintContext, "context", "", "Background for word choice, passed to LLM providers")
	translateCmd.Flags().StringVar(&dbPath, "db", "", "Journal database path (default: db_path from config)")
	translateCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record the run in the journal")
	translateCmd.Flags().BoolVar(&outputJSON, "json", false, "Write the full selection as JSON")
}

func printSelection(sel *arbiter.Selection) {
	fmt.Fprintf(os.Stderr, "Selected: %s (prior %.2f)\n", sel.Best.ProviderID, sel.Best.Score())
	for _, alt := range sel.Alternatives {
		fmt.Fprintf(os.Stderr, "  alternative %s (prior %.2f): %s\n", alt.ProviderID, alt.Score(), snippet(alt.Text, 60))
	}
	fmt.Fprintf(os.Stderr, "Quality: %s (%.2f)\n", sel.Quality.Grade(), sel.Quality.Overall)
	for _, s := range sel.Quality.Suggestions {
		fmt.Fprintf(os.Stderr, "  suggestion: %s\n", s)
	}
}
