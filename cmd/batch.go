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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/orchestrator"
)

var (
	batchInput   string
	batchOutput  string
	batchTarget  string
	batchContext string
	batchReport  bool
	batchDBPath  string
	batchNoStore bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Translate a JSON object of content fields in one provider call",
	Long: `Read a JSON object of field name to text, skip empty fields, and translate
the rest to English with the primary provider in a single batched call.
When the fields are already English the input is returned unchanged and no
provider is called. Every translated field is graded; low scores are logged
as warnings but never block the result.

Example input:
  {"title": "오늘의 추천 메뉴", "body": "신선한 재료로 만든 비빔밥"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(batchInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		var fields map[string]string
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("input must be a JSON object of strings: %w", err)
		}

		ctx := cmd.Context()

		orch, err := buildOrchestrator(appCfg, batchTarget)
		if err != nil {
			return err
		}

		res, err := orch.Run(ctx, fields, orchestrator.Options{
			TargetLang: batchTarget,
			Context:    batchContext,
		})
		if err != nil {
			return err
		}

		db, err := openStore(dbPathFor(batchDBPath), batchNoStore)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			target := batchTarget
			if target == "" {
				target = appCfg.TargetLang
			}
			if len(res.Translations) > 0 {
				if _, err := db.RecordBatch(ctx, res, target, batchContext); err != nil {
					logger.Warn("failed to journal batch", zap.Error(err))
				}
			}
		}

		if res.ShortCircuited {
			fmt.Fprintf(os.Stderr, "Already English (confidence %.2f), nothing translated\n", res.Detection.Confidence)
		} else {
			fmt.Fprintf(os.Stderr, "Translated %d fields from %s via %s\n", len(res.Translations), res.Detection.Language, res.Provider)
		}

		if batchReport {
			return writeJSON(batchOutput, res)
		}
		return writeJSON(batchOutput, res.Translations)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "JSON file with fields to translate (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output JSON file (default: stdout)")
	batchCmd.Flags().StringVarP(&batchTarget, "target", "t", "", "Target language code (default: target_lang from config)")
	batchCmd.Flags().StringVar(&batchContext, "context", "", "Background for word choice, passed to LLM providers")
	batchCmd.Flags().BoolVar(&batchReport, "report", false, "Write detection and per-field quality reports alongside translations")
	batchCmd.Flags().StringVar(&batchDBPath, "db", "", "Journal database path (default: db_path from config)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-journal", false, "Do not record the run in the journal")

	batchCmd.MarkFlagRequired("input")
}
