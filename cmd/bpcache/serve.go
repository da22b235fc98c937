package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/bpcache"
	zaplog "github.com/unkn0wn-root/bpcache/log/zap"
	"github.com/unkn0wn-root/bpcache/resp"
	"github.com/unkn0wn-root/bpcache/store/memory"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	var (
		addr  string
		sweep time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory store over the Redis protocol",
		Long:  "Run a RESP server backed by an in-process memory store; point --redis of other commands at it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(loadConfig(v).LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			log := zaplog.New(logger)

			mem := memory.New()
			srv, err := resp.New(resp.Config{Addr: addr, Store: mem, Logger: log})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if sweep > 0 {
				go sweepLoop(ctx, mem, sweep, log)
			}
			log.Info("serving", bpcache.Fields{"addr": addr})
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":6380", "Listen address")
	cmd.Flags().DurationVar(&sweep, "sweep", time.Minute, "Expired entry sweep interval (0 disables)")
	return cmd
}

func sweepLoop(ctx context.Context, mem *memory.Memory, every time.Duration, log bpcache.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := mem.Sweep(); n > 0 {
				log.Debug("swept expired entries", bpcache.Fields{"count": n})
			}
		}
	}
}
