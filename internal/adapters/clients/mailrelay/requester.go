package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/layerflow/internal/platform/httpclient"
)

// requester sends authenticated JSON requests to the relay and turns
// failures into domain errors.
type requester struct {
	client *httpclient.Client
	token  string
	logger *slog.Logger
}

// post sends reqBody as JSON to path and decodes the response into respBody
// when it is non-nil. A status other than wantStatus is passed to
// statusError. A non-empty idemKey is sent as Idempotency-Key, which
// lets httpclient retry the POST.
func (r *requester) post(ctx context.Context, path, idemKey string, wantStatus int, reqBody, respBody any) error {
	url := r.client.BaseURL() + path

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling POST body for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating POST request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set(httpclient.HeaderIdempotencyKey, idemKey)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	return r.execute(req, wantStatus, respBody)
}

func (r *requester) execute(req *http.Request, wantStatus int, respBody any) error {
	ctx := req.Context()
	log := r.logger.With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	// Exhausted retries on a retryable status return both resp and err; the
	// status is the more useful error then.
	resp, err := r.client.Do(ctx, req)
	if resp == nil {
		log.ErrorContext(ctx, "mail relay unreachable", slog.Any("error", err))
		return transportError(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.WarnContext(ctx, "failed to close response body", slog.Any("error", cerr))
		}
	}()

	if resp.StatusCode != wantStatus {
		log.ErrorContext(ctx, "unexpected mail relay status",
			slog.Int("status", resp.StatusCode),
			slog.Int("want_status", wantStatus),
		)
		return statusError(resp)
	}
	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decoding %s response from %s: %w", ServiceName, req.URL.Path, err)
	}
	return nil
}
