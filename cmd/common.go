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
	"path/filepath"

	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/config"
	"github.com/valpere/transqc/internal/orchestrator"
	"github.com/valpere/transqc/internal/store"
	"github.com/valpere/transqc/internal/translator"
)

func buildProvider(p config.ProviderConfig) (translator.Provider, error) {
	return translator.New(translator.Kind(p.Kind), p.Name, p.ServiceConfig)
}

// buildArbiter wraps every configured provider with its prior, in
// configuration order.
func buildArbiter(cfg *config.Config) (*arbiter.Arbiter, error) {
	sources := make([]arbiter.Source, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		provider, err := buildProvider(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, arbiter.Source{
			Provider: provider,
			Prior:    arbiter.Prior{Quality: p.PriorQuality, Confidence: p.PriorConfidence},
		})
	}
	return arbiter.New(sources,
		arbiter.WithLogger(logger),
		arbiter.WithTargetLang(cfg.TargetLang),
	), nil
}

// buildOrchestrator uses the primary provider for the single batched call.
func buildOrchestrator(cfg *config.Config, targetOverride string) (*orchestrator.Orchestrator, error) {
	p, ok := cfg.Provider(cfg.PrimaryProvider)
	if !ok {
		return nil, fmt.Errorf("primary provider %q is not configured", cfg.PrimaryProvider)
	}
	provider, err := buildProvider(p)
	if err != nil {
		return nil, err
	}

	target := cfg.TargetLang
	if targetOverride != "" {
		target = targetOverride
	}

	return orchestrator.New(provider, orchestrator.NewLogObserver(logger), orchestrator.OrchestratorConfig{
		DefaultTargetLang:      target,
		ShortCircuitConfidence: cfg.ShortCircuitConfidence,
		LowQualityThreshold:    cfg.LowQualityThreshold,
		SkipValidation:         cfg.SkipValidation,
	}), nil
}

// openStore returns nil when journaling is disabled.
func openStore(path string, disabled bool) (*store.Store, error) {
	if disabled || path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path, store.WithLowQualityThreshold(appCfg.LowQualityThreshold))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(path, append(data, '\n'))
}

func dbPathFor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return appCfg.DBPath
}
