package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/cellbot/internal/remote"
	"github.com/msto63/cellbot/pkg/core/health"
	"github.com/spf13/cobra"
)

var (
	serveHost       string
	servePort       int
	serveHealthAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the remote runner service",
	Long: `Starts a gRPC server that compiles and runs RCL programs for remote
clients (see "cellbot remote"). Compiled programs are cached by source
hash. The standard gRPC health service is registered; --health-addr
additionally serves a JSON health report over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveHealthAddr, "health-addr", "", "serve /healthz on this address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Server
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv := remote.NewServer(cfg, newRunner())
	registry := srv.HealthRegistry()
	registry.Register(health.TCPCheck("grpc", srv.Address(), time.Second))

	if appConfig.History.Enabled {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		registry.Register(health.PingCheck("history", store))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var healthSrv *http.Server
	if serveHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", registry.Handler(5*time.Second))
		healthSrv = &http.Server{Addr: serveHealthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Health endpoint failed: " + err.Error())
			}
		}()
		logger.Info("Health endpoint on http://" + serveHealthAddr + "/healthz")
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	logger.Info("Shutdown signal received, stopping server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if healthSrv != nil {
		healthSrv.Shutdown(ctx)
	}
	srv.Stop(ctx)

	logger.Info("Remote runner stopped (" + srv.CacheStats() + ")")
	return nil
}
