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
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/server"
)

var (
	serveAddr    string
	serveDBPath  string
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve detection, checking and translation over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /health
  POST /api/v1/detect     {"texts": [...]}
  POST /api/v1/check      {"original": "...", "translated": "..."}
  POST /api/v1/translate  {"text": "...", "context": "..."}
  POST /api/v1/batch      {"fields": {...}, "target_lang": "...", "context": "..."}
  GET  /api/v1/history    ?limit=N
  GET  /api/v1/stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		arb, err := buildArbiter(appCfg)
		if err != nil {
			return err
		}
		orch, err := buildOrchestrator(appCfg, "")
		if err != nil {
			return err
		}
		db, err := openStore(dbPathFor(serveDBPath), serveNoStore)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		addr := appCfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := &http.Server{
			Addr: addr,
			Handler: server.NewRouter(server.Deps{
				Arbiter:      arb,
				Orchestrator: orch,
				Store:        db,
				TargetLang:   appCfg.TargetLang,
			}, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		logger.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Journal database path (default: db_path from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-journal", false, "Do not journal requests")
}
