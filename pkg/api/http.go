package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 512

// HTTPClient posts GraphQL documents to the search backend.
type HTTPClient struct {
	client    *http.Client
	logger    interfaces.Logger
	baseURL   string
	token     string
	userAgent string
}

// NewHTTPClient creates a GraphQL HTTP client. baseURL is the full URL of
// the GraphQL handler.
func NewHTTPClient(httpClient *http.Client, baseURL string, logger interfaces.Logger) *HTTPClient {
	return &HTTPClient{
		client:    httpClient,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "insightview",
	}
}

// SetToken sets the access token sent in the Authorization header.
func (hc *HTTPClient) SetToken(token string) {
	hc.token = token
}

// SetUserAgent sets the User-Agent header.
func (hc *HTTPClient) SetUserAgent(ua string) {
	hc.userAgent = ua
}

// Post sends one GraphQL request for the named operation and decodes the
// response body into result. It makes exactly one attempt. Failures are
// returned as *SearchError with Encode, Transport, Status or Decode kinds;
// GraphQL-level errors are left to the caller.
func (hc *HTTPClient) Post(ctx context.Context, operation string, req graphQLRequest, result interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return &SearchError{Kind: KindEncode, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	fullURL := hc.baseURL + "?" + operation

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return &SearchError{Kind: KindEncode, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("User-Agent", hc.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if hc.token != "" {
		httpReq.Header.Set("Authorization", "token "+hc.token)
	}

	hc.logger.Debug("GraphQL %s: POST %s (request %s)", operation, fullURL, requestID)

	resp, err := hc.client.Do(httpReq)
	if err != nil {
		return &SearchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		hc.logger.Debug("GraphQL %s failed with status %d (request %s): %s",
			operation, resp.StatusCode, requestID, strings.TrimSpace(string(snippet)))

		return &SearchError{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &SearchError{Kind: KindDecode, Err: fmt.Errorf("failed to parse response JSON: %w", err)}
	}

	return nil
}
