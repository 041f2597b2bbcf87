package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	appconfig "github.com/tesla-electricidad/intake-engine/internal/config"
	"github.com/tesla-electricidad/intake-engine/internal/session"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "  "}
	require.Nil(t, BuildRedisClient(context.Background(), cfg, nil, false))
	require.Nil(t, BuildRedisClient(context.Background(), nil, nil, false))
}

func TestBuildRedisClientVerifyFailureReturnsNil(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	require.Nil(t, BuildRedisClient(context.Background(), cfg, logging.New("error"), true))
}

func TestBuildSessionStorePrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr(), SessionTTL: time.Hour}
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	require.NotNil(t, client)

	store := BuildSessionStore(client, cfg, logging.New("error"))
	require.IsType(t, &session.RedisStore{}, store)
}

func TestBuildSessionStoreFallsBackToMemory(t *testing.T) {
	cfg := &appconfig.Config{SessionTTL: time.Hour}
	store := BuildSessionStore(nil, cfg, logging.New("error"))
	require.IsType(t, &session.MemoryStore{}, store)
}

func TestBuildTranscriptStoreDisabledWithoutDatabase(t *testing.T) {
	require.Nil(t, BuildTranscriptStore(&appconfig.Config{}, nil))
}

func TestBuildNotifierChannels(t *testing.T) {
	require.Nil(t, BuildNotifier(&appconfig.Config{Env: "production"}, logging.New("error")))

	cfg := &appconfig.Config{
		TwilioAccountSID: "AC123",
		TwilioAuthToken:  "token",
		WhatsAppFrom:     "+51911111111",
	}
	require.NotNil(t, BuildNotifier(cfg, logging.New("error")))
}

func TestBuildNotifierDevelopmentUsesStubs(t *testing.T) {
	cfg := &appconfig.Config{Env: "development", OperatorEmail: "ops@tesla.pe"}
	svc := BuildNotifier(cfg, logging.New("error"))
	require.NotNil(t, svc)
	// The stub senders only log, so firing a notification is safe.
	svc.NotifyNewLead(context.Background(), nil, nil)
}
