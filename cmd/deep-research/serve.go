// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the research pipeline over HTTP",
	Long: `Serve starts an HTTP API on the given port. Runs are created with
POST /api/v1/runs, clarifying answers arrive via POST /api/v1/runs/{id}/answers,
and finished runs are read back with GET /api/v1/runs/{id}.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")

	cfg := pipelineConfig()
	pipe, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Cancelling runCtx on shutdown stops in-flight pipeline runs; each is
	// persisted in whatever state it reached.
	runCtx, stopRuns := context.WithCancel(context.Background())
	defer stopRuns()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.New(runCtx, pipe, store).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down")
		stopRuns()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on :%d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().Int("port", 8080, "port to listen on")

	rootCmd.AddCommand(serveCmd)
}
