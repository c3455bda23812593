package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/config"
	"github.com/uschtwill/trackd/internal/server"
	"github.com/uschtwill/trackd/internal/service"
	"github.com/uschtwill/trackd/internal/storage/factory"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		// Flags override config file and environment values.
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.Set("addr", addr)
		}
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			config.Set("dir", dir)
		}
		addr := config.GetString("addr")
		dir := config.GetString("dir")

		log := logrus.WithField("component", "trackd")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := factory.NewFromConfigWithOptions(ctx, dir, factory.Options{
			LockTimeout: config.GetDuration("lock-timeout"),
		})
		if err != nil {
			FatalError("opening storage: %v", err)
		}
		defer func() { _ = store.Close() }()

		var resolver auth.Resolver = auth.Static{}
		if sessionsFile := config.GetString("sessions-file"); sessionsFile != "" {
			tokenFile, err := auth.NewTokenFile(sessionsFile, log)
			if err != nil {
				FatalError("loading sessions: %v", err)
			}
			defer func() { _ = tokenFile.Close() }()
			resolver = tokenFile
		} else {
			log.Warn("no sessions-file configured; all requests are unauthenticated")
		}

		svc := service.New(store, log, config.GetInt("page-size"))
		srv := server.New(svc, resolver, log)

		if err := srv.ListenAndServe(ctx, addr); err != nil {
			FatalError("server failed: %v", err)
		}
		log.Info("shut down")
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config: :8080)")
	serveCmd.Flags().String("dir", "", "data directory (default from config: .trackd)")
}
