package main

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/bpcache"
	"github.com/unkn0wn-root/bpcache/codec"
	zaplog "github.com/unkn0wn-root/bpcache/log/zap"
	redisstore "github.com/unkn0wn-root/bpcache/store/redis"
)

// config is resolved from flags, then BPCACHE_* env vars.
type config struct {
	Redis     string
	RedisPass string
	RedisDB   int
	Prefix    string
	LogLevel  string
}

func loadConfig(v *viper.Viper) config {
	return config{
		Redis:     v.GetString("redis"),
		RedisPass: v.GetString("redis-pass"),
		RedisDB:   v.GetInt("redis-db"),
		Prefix:    v.GetString("prefix"),
		LogLevel:  v.GetString("log-level"),
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BPCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "bpcache",
		Short:         "Inspect and serve bpcache pools",
		Long:          "Read and write items of a bpcache pool stored in Redis, or serve an in-memory store over the Redis protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("redis", "127.0.0.1:6379", "Redis address")
	pf.String("redis-pass", "", "Redis password")
	pf.Int("redis-db", 0, "Redis database")
	pf.String("prefix", bpcache.DefaultPrefix, "Pool key prefix")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	for _, name := range []string{"redis", "redis-pass", "redis-db", "prefix", "log-level"} {
		_ = v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		serveCmd(v),
		getCmd(v),
		setCmd(v),
		msetCmd(v),
		hasCmd(v),
		delCmd(v),
		clearCmd(v),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// session is a pool bound to a Redis connection for a single command.
type session struct {
	pool  *bpcache.Pool[string]
	store *redisstore.Redis
	log   *zap.Logger
}

func (s *session) Close() {
	_ = s.store.Close(context.Background())
	_ = s.log.Sync()
}

func openSession(ctx context.Context, cfg config) (*session, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis, err)
	}

	st, err := redisstore.New(redisstore.Config{Client: client, CloseClient: true})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	pool, err := bpcache.New[string](bpcache.Options[string]{
		Store:  st,
		Prefix: cfg.Prefix,
		Codec:  codec.String{},
		Logger: zaplog.New(logger),
	})
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return &session{pool: pool, store: st, log: logger}, nil
}

// withSession opens a session from the resolved config and closes it after fn.
func withSession(v *viper.Viper, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), loadConfig(v))
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}
