package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/config"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RELAY_JWT_SECRET", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, config.RelayHTTP, cfg.RelayMode)
	assert.Equal(t, "http://localhost:8080/api/v1/transactions/create", cfg.RelayURL)
	assert.Zero(t, cfg.RelayTimeout)
	assert.Equal(t, config.IDFormatULID, cfg.EntryIDFormat)
	assert.Equal(t, time.Hour, cfg.EntryCacheTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.UsesLegacyAtRestKey())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RELAY_MODE", "local")
	t.Setenv("RELAY_TIMEOUT", "3s")
	t.Setenv("ENTRY_ID_FORMAT", "uuid")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("AT_REST_KEY", "abcdefghijklmnopqrstuvwxyz012345")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, config.RelayLocal, cfg.RelayMode)
	assert.Equal(t, 3*time.Second, cfg.RelayTimeout)
	assert.Equal(t, config.IDFormatUUID, cfg.EntryIDFormat)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	assert.False(t, cfg.UsesLegacyAtRestKey())
}

func TestLoadRejectsUnknownEnums(t *testing.T) {
	for _, kv := range [][2]string{
		{"STORAGE_DRIVER", "sqlite"},
		{"RELAY_MODE", "grpc"},
		{"ENTRY_ID_FORMAT", "snowflake"},
		{"HTTP_READ_TIMEOUT", "not-a-duration"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			t.Setenv(kv[0], kv[1])

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestConfigKeys(t *testing.T) {
	priv, err := encryption.GenerateKeyPair()
	require.NoError(t, err)

	pubB64, err := encryption.EncodePublicKey(&priv.PublicKey)
	require.NoError(t, err)
	privB64, err := encryption.EncodePrivateKey(priv)
	require.NoError(t, err)

	cfg := &config.Config{
		RSAPublicKey:       pubB64,
		RSAPrivateKey:      privB64,
		AtRestKey:          "0123456789abcdef0123456789abcdef",
		AtRestKeyID:        "v2",
		AtRestPreviousKeys: "v1:" + config.LegacyAtRestKey,
	}

	pub, err := cfg.PublicKey()
	require.NoError(t, err)
	assert.True(t, pub.Equal(&priv.PublicKey))

	gotPriv, err := cfg.PrivateKey()
	require.NoError(t, err)
	assert.True(t, gotPriv.Equal(priv))

	kr, err := cfg.Keyring()
	require.NoError(t, err)
	assert.Equal(t, "v2", kr.CurrentID())

	legacy, err := encryption.ParseKeyring("v1", config.LegacyAtRestKey, "")
	require.NoError(t, err)
	sealed, keyID, err := legacy.Seal("acc-1")
	require.NoError(t, err)

	account, err := kr.Open(keyID, sealed)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", account)
}

func TestConfigKeysErrors(t *testing.T) {
	cfg := &config.Config{RSAPublicKey: "bm90LWEta2V5", AtRestKey: "short", AtRestKeyID: "v1"}

	_, err := cfg.PublicKey()
	assert.True(t, errors.Is(err, domain.ErrKeyFormat), "got %v", err)

	_, err = cfg.PrivateKey()
	assert.Error(t, err)

	_, err = cfg.Keyring()
	assert.ErrorIs(t, err, domain.ErrKeyFormat)
}
