package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dentflow/dentflow/internal/server"
	"github.com/dentflow/dentflow/pkg/config"
	"github.com/dentflow/dentflow/pkg/notify"
	"github.com/dentflow/dentflow/pkg/session"
	"github.com/dentflow/dentflow/pkg/store"
)

// newServeCmd creates the serve command running the admin console API.
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin console HTTP API",
		Long: `Serve the admin console HTTP API.

The server needs a reachable MongoDB instance. Sessions live in Redis
when a Redis address is configured and in memory otherwise; realtime
refresh events are published to NATS when a NATS URL is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (TOML)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()
	logger.Debug("connected to MongoDB", "database", cfg.Mongo.Database)

	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisStore.Close()
		sessions = redisStore
		logger.Debug("sessions in Redis", "addr", cfg.Redis.Addr)
	}

	var publisher notify.Publisher = notify.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := notify.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Debug("publishing to NATS", "url", cfg.NATS.URL)
	}

	srv := server.New(server.Config{
		Logger:         logger,
		Questions:      db.Questions(),
		Users:          db.Users(),
		Appointments:   db.Appointments(),
		Sessions:       sessions,
		Publisher:      publisher,
		SessionTTL:     cfg.Server.SessionTTL.Std(),
		RootQuestionID: cfg.Flow.RootQuestionID,
	})

	return srv.Run(ctx, cfg.Server.Listen)
}
