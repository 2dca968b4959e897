package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/auth"
)

func testBatch() domain.EncryptedFieldBatch {
	return domain.EncryptedFieldBatch{Records: []domain.EncryptedFieldRecord{
		{EntryID: "e1", Account: "a1", Debit: "d1", Credit: "c1", Time: "t1"},
		{EntryID: "e2", Account: "a2", Debit: "d2", Credit: "c2", Time: "t2"},
	}}
}

func TestHTTPRelayForwardSuccess(t *testing.T) {
	const body = `{"message":"Success","data":[{"id":1}]}`
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req dto.ListTransactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.TransactionRequests, 2)
		assert.Equal(t, "e2", req.TransactionRequests[1].TransactionID)
		assert.Equal(t, "c1", req.TransactionRequests[0].Have)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, body)
	}))
	defer srv.Close()

	got, err := NewHTTPRelay(srv.URL, 0, nil).Forward(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.Equal(t, 1, calls)
}

func TestHTTPRelayForwardAttachesToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("relay-secret", time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		require.True(t, ok)

		claims, err := jwtManager.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, 2, claims.Legs)

		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewHTTPRelay(srv.URL, time.Second, jwtManager).Forward(context.Background(), testBatch())
	require.NoError(t, err)
}

func TestHTTPRelayForwardFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "error status with error body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusConflict)
				io.WriteString(w, `{"error":"CONFLICT","message":"entry identifier already exists"}`)
			},
			wantStatus: http.StatusConflict,
			wantMsg:    "entry identifier already exists",
		},
		{
			name: "error status with text body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "upstream unavailable",
		},
		{
			name: "non-JSON success body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				io.WriteString(w, "<html>ok</html>")
			},
			wantStatus: http.StatusOK,
			wantMsg:    "response is not JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			}))
			defer srv.Close()

			_, err := NewHTTPRelay(srv.URL, 0, nil).Forward(context.Background(), testBatch())
			require.ErrorIs(t, err, domain.ErrRelay)

			var relayErr *domain.RelayError
			require.True(t, errors.As(err, &relayErr))
			assert.Equal(t, tt.wantStatus, relayErr.StatusCode)
			assert.Contains(t, relayErr.Message, tt.wantMsg)
			assert.Equal(t, 1, calls, "relay must not retry")
		})
	}
}

func TestHTTPRelayForwardTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPRelay(url, 0, nil).Forward(context.Background(), testBatch())
	require.ErrorIs(t, err, domain.ErrRelay)
	assert.Equal(t, domain.KindRelay, domain.KindOf(err))
}

func TestHTTPRelayForwardTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPRelay(srv.URL, 50*time.Millisecond, nil).Forward(context.Background(), testBatch())
	assert.ErrorIs(t, err, domain.ErrRelay)
}
