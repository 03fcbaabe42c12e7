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

	"github.com/spf13/cobra"

	"github.com/valpere/transqc/internal/quality"
)

var (
	checkOriginal   string
	checkTranslated string
	checkContext    string
	checkJSON       bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Score a translation against its source",
	Long: `Score a translation for completeness, fluency and accuracy, and print the
overall score, letter grade, issues and suggestions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := quality.NewChecker().Check(checkOriginal, checkTranslated, checkContext)

		if checkJSON {
			return writeJSON("", map[string]any{
				"report": report,
				"grade":  report.Grade(),
			})
		}

		printReport(report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkOriginal, "original", "", "Source text")
	checkCmd.Flags().StringVar(&checkTranslated, "translated", "", "Translated text (required)")
	checkCmd.Flags().StringVar(&checkContext, "context", "", "Context the text was translated with")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")

	checkCmd.MarkFlagRequired("translated")
}

func printReport(r quality.Report) {
	fmt.Printf("Grade:        %s (%.2f)\n", r.Grade(), r.Overall)
	fmt.Printf("Fluency:      %.2f\n", r.Fluency)
	fmt.Printf("Accuracy:     %.2f\n", r.Accuracy)
	fmt.Printf("Completeness: %.2f\n", r.Completeness)
	for _, issue := range r.Issues {
		fmt.Printf("Issue:        %s\n", issue)
	}
	for _, s := range r.Suggestions {
		fmt.Printf("Suggestion:   %s\n", s)
	}
}
