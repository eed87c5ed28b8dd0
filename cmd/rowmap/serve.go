package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jacoelho/rowmap/internal/logger"
	"github.com/jacoelho/rowmap/internal/server"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			log := logger.Init(cfg.Logger(), os.Stdout)

			deps, err := newComponents(cmd.Context(), cfg, log, true)
			if err != nil {
				return err
			}
			defer func() {
				if err := deps.Close(); err != nil {
					log.Warn("close components", slog.Any("error", err))
				}
			}()

			gin.SetMode(gin.ReleaseMode)
			srv, err := server.New(server.Options{
				Fetcher:         deps.resolver,
				Store:           deps.store,
				Logger:          log,
				CORSOrigin:      cfg.Server.CORSOrigin,
				RateLimit:       cfg.Server.RateLimit,
				RateBurst:       cfg.Server.RateBurst,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :3001)")
	cmd.Flags().String("store", "", "Configuration store driver: redis, sqlite or memory")
	cmd.Flags().String("redis-addr", "", "Redis address")
	_ = opts.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = opts.v.BindPFlag("store.driver", cmd.Flags().Lookup("store"))
	_ = opts.v.BindPFlag("redis.addr", cmd.Flags().Lookup("redis-addr"))

	return cmd
}
