package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/tesla-electricidad/intake-engine/internal/config"
	"github.com/tesla-electricidad/intake-engine/internal/intake"
	"github.com/tesla-electricidad/intake-engine/internal/notify"
	"github.com/tesla-electricidad/intake-engine/internal/session"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildSessionStore picks Redis-backed sessions when a client is
// available and falls back to the in-process store otherwise.
func BuildSessionStore(client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if client != nil {
		logger.Info("session store: redis", "ttl", cfg.SessionTTL.String())
		return session.NewRedisStore(client, cfg.SessionTTL)
	}
	logger.Warn("session store: in-memory, sessions will not survive restarts")
	return session.NewMemoryStore()
}

// BuildDatabasePool opens a pgx pool or returns nil when no DATABASE_URL
// is configured.
func BuildDatabasePool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database pool ready")
	return pool, nil
}

// BuildTranscriptStore wires optional conversation persistence through
// database/sql so the chat flow works without Postgres.
func BuildTranscriptStore(cfg *appconfig.Config, logger *logging.Logger) *intake.TranscriptStore {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("transcript store disabled", "error", err)
		return nil
	}
	return intake.NewTranscriptStore(db)
}

// BuildNotifier assembles the operator email + customer WhatsApp
// notifier. Without configured channels, development gets log-only stub
// senders so the notification flow stays visible; other environments get
// nil and notifications are disabled.
func BuildNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var email notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		email = sg
	}

	var whatsapp notify.MessageSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		whatsapp = notify.NewTwilioWhatsAppSender(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.WhatsAppFrom, logger)
	}

	if email == nil && whatsapp == nil {
		if cfg.Env == "development" {
			logger.Info("no notification channels configured, using stub senders")
			return notify.NewService(
				notify.NewStubEmailSender(logger),
				notify.NewStubMessageSender(logger),
				cfg.OperatorEmail, logger)
		}
		logger.Info("notifications disabled, no channels configured")
		return nil
	}
	return notify.NewService(email, whatsapp, cfg.OperatorEmail, logger)
}
