package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reasonchain/core/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run startup restoration and serve Prometheus/health endpoints until terminated",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		m, closeFn, err := openManager(dataDir)
		if err != nil {
			return err
		}
		defer closeFn()

		hc := metrics.NewHealthChecker("blobstore", "events", "manager")
		hc.SetVersion(Version)
		hc.RegisterComponent("blobstore", true, "ready")
		hc.RegisterComponent("events", true, "ready")
		hc.RegisterComponent("manager", false, "restoring")

		ctx := context.Background()
		report, err := m.RestoreAll(ctx)
		if err != nil {
			hc.RegisterComponent("manager", false, err.Error())
			return fmt.Errorf("startup restoration failed: %v", err)
		}
		hc.RegisterComponent("manager", true, "ready")
		fmt.Printf("Startup restoration: %d succeeded, %d failed\n", report.SuccessfulRestorations, report.FailedRestorations)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", hc.HealthHandler())
		mux.Handle("/ready", hc.ReadyHandler())
		mux.Handle("/live", hc.LivenessHandler())

		errCh := make(chan error, 1)
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				errCh <- err
			}
		}()
		fmt.Printf("Metrics endpoint: http://%s/metrics\n", metricsAddr)
		fmt.Printf("Health endpoints: http://%s/{health,ready,live}\n", metricsAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("metrics server error: %v", err)
		case <-sigCh:
			fmt.Println("\nShutting down")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics and health endpoints on")
}
