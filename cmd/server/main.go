package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/api"
	"github.com/achgulp/axon-bbs-sub000/pkg/config"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/version"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg, envErr := config.LoadServer()
	var (
		certFile string
		keyFile  string
	)

	cmd := &cobra.Command{
		Use:           "overlord-server",
		Short:         "Hosts the shared event log Fortress Overlord clients play over",
		Version:       version.Get(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			var tls *api.TLSConfig
			if certFile != "" || keyFile != "" {
				tls = &api.TLSConfig{CertFile: certFile, KeyFile: keyFile}
			}
			return run(cmd.Context(), cfg, tls)
		},
	}

	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP port to listen on")
	cmd.Flags().StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "event log connection string (memory://, sqlite://<path>, postgresql://...)")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	cmd.Flags().StringVar(&certFile, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&keyFile, "tls-key", "", "TLS key file")
	return cmd
}

func run(ctx context.Context, cfg config.Server, tls *api.TLSConfig) error {
	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)
	log.Info("Starting log host version %s", version.Get())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := eventlog.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open event log: %v", err)
	}
	defer l.Close(context.Background())

	server := api.NewAPIServer(api.NewAPIServerOptions{
		Port: cfg.Port,
		TLS:  tls,
		Log:  l,
	})
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop API server: %v", err)
	}
	return nil
}
