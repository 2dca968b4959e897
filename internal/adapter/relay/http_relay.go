// Package relay forwards encoded transfers to the materialization step.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
)

// maxResponseBytes caps how much of a relay response is read.
const maxResponseBytes = 1 << 20

// TokenSigner mints the bearer token attached to each relay call.
type TokenSigner interface {
	Generate(legs int) (string, error)
}

// HTTPRelay implements usecase.Relay by POSTing to a remote endpoint.
type HTTPRelay struct {
	client *http.Client
	url    string
	signer TokenSigner
}

// NewHTTPRelay creates a new HTTPRelay. A zero timeout leaves the client
// without a deadline; signer may be nil.
func NewHTTPRelay(url string, timeout time.Duration, signer TokenSigner) *HTTPRelay {
	return &HTTPRelay{
		client: &http.Client{Timeout: timeout},
		url:    url,
		signer: signer,
	}
}

// Forward makes exactly one POST attempt and returns the response body
// unchanged. Transport failures, non-2xx statuses and non-JSON bodies are
// reported as *domain.RelayError.
func (r *HTTPRelay) Forward(ctx context.Context, batch domain.EncryptedFieldBatch) (json.RawMessage, error) {
	body, err := json.Marshal(dto.ListTransactionRequestFromBatch(batch))
	if err != nil {
		return nil, &domain.RelayError{Message: "encode batch", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.RelayError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if r.signer != nil {
		token, err := r.signer.Generate(len(batch.Records))
		if err != nil {
			return nil, &domain.RelayError{Message: "sign request", Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.RelayError{Message: "transport", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.RelayError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", r.url).
		Int("status", resp.StatusCode).
		Msg("relay response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RelayError{StatusCode: resp.StatusCode, Message: remoteMessage(raw)}
	}

	if !json.Valid(raw) {
		return nil, &domain.RelayError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response is not JSON (%s)", resp.Header.Get("Content-Type")),
		}
	}

	return json.RawMessage(raw), nil
}

// remoteMessage extracts the message of an error body, falling back to the
// raw text.
func remoteMessage(raw []byte) string {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}

	msg := strings.TrimSpace(string(raw))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}
