package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cipherledger/internal/infrastructure/config"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
)

func newLocalConfig(t *testing.T) *config.Config {
	t.Helper()

	priv, err := encryption.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := encryption.EncodePublicKey(&priv.PublicKey)
	require.NoError(t, err)
	encodedPriv, err := encryption.EncodePrivateKey(priv)
	require.NoError(t, err)

	return &config.Config{
		StorageDriver: config.StorageMemory,
		RelayMode:     config.RelayLocal,
		EntryIDFormat: config.IDFormatUUID,
		RSAPublicKey:  pub,
		RSAPrivateKey: encodedPriv,
		AtRestKey:     "abcdef0123456789",
		AtRestKeyID:   "v2",
	}
}

type envelope struct {
	Message string `json:"message"`
	Data    []struct {
		ID            int64  `json:"id"`
		TransactionID string `json:"transactionID"`
		Account       string `json:"account"`
		InDebt        string `json:"inDebt"`
		Have          string `json:"have"`
	} `json:"data"`
}

func TestNewApp_LocalPipeline(t *testing.T) {
	cfg := newLocalConfig(t)

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	body := `{"accountSender":"acc-1","accountReceiver":"acc-2","transferAmount":100.00}`
	resp, err := http.Post(srv.URL+"/api/v1/transactions/info", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Success", got.Message)
	require.Len(t, got.Data, 2)
	assert.NotEqual(t, got.Data[0].TransactionID, got.Data[1].TransactionID)
	assert.NotEqual(t, "acc-1", got.Data[0].Account)
	assert.Equal(t, "100.00", got.Data[0].InDebt)
	assert.Equal(t, "0", got.Data[0].Have)
	assert.Equal(t, "100.00", got.Data[1].Have)

	entryResp, err := http.Get(srv.URL + "/api/v1/transactions/" + got.Data[0].TransactionID)
	require.NoError(t, err)
	defer entryResp.Body.Close()
	assert.Equal(t, http.StatusOK, entryResp.StatusCode)

	missing, err := http.Get(srv.URL + "/api/v1/transactions/does-not-exist")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestNewApp_MetricsEndpoint(t *testing.T) {
	cfg := newLocalConfig(t)

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cipherledger_")
}

func TestNewApp_RateLimiter(t *testing.T) {
	cfg := newLocalConfig(t)
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.limiter)
}

func TestNewApp_MissingKeys(t *testing.T) {
	cfg := newLocalConfig(t)
	cfg.RSAPublicKey = ""

	_, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	assert.ErrorContains(t, err, "RSA_PUBLIC_KEY")
}

func TestNewApp_BadRedisURL(t *testing.T) {
	cfg := newLocalConfig(t)
	cfg.RedisURL = "not-a-url"

	_, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	assert.ErrorContains(t, err, "redis")
}
