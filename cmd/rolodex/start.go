// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/rolodex/internal/book"
	"github.com/sigil-dev/rolodex/internal/config"
	"github.com/sigil-dev/rolodex/internal/server"
	"github.com/sigil-dev/rolodex/internal/store"
	_ "github.com/sigil-dev/rolodex/internal/store/file"
	_ "github.com/sigil-dev/rolodex/internal/store/sqlite"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the contact book server",
		Long:  "Load configuration, open the storage backend, rebuild the search index and serve the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd, v)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runStart(cmd *cobra.Command, v *viper.Viper) error {
	if f := cmd.Flags().Lookup("listen"); f.Changed {
		v.Set("networking.listen", f.Value.String())
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if v.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}

	logger := cfg.Log.Logger(cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(cfg.Storage.Store(), cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("closing storage backend", "error", err)
		}
	}()

	b, err := book.New(ctx, backend, book.WithLogger(logger))
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Networking.RateLimit.RequestsPerSecond,
			Burst:             cfg.Networking.RateLimit.Burst,
		},
		Book:   b,
		Logger: logger,
	})
	if err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeCLISetupFailure, "creating server")
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Starting rolodex on %s (backend=%s, data=%s)\n",
		cfg.Networking.Listen, cfg.Storage.Backend, cfg.DataDir); err != nil {
		return err
	}

	return srv.Start(ctx)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
