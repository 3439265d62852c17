package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/devnullvoid/insightview/pkg/api/interfaces"
)

// Client runs search queries against the backend's GraphQL endpoint.
type Client struct {
	httpClient *HTTPClient
	logger     interfaces.Logger
	url        string
}

// Searcher is the query-client contract consumed by the result loader.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResults, error)
}

// NewClient creates a search client with dependency injection.
func NewClient(config interfaces.Config, options ...ClientOption) (*Client, error) {
	opts := defaultOptions()
	for _, option := range options {
		option(opts)
	}

	endpoint := strings.TrimRight(config.GetEndpoint(), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("search endpoint cannot be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute URL", endpoint)
	}

	path := config.GetGraphQLPath()
	if path == "" {
		path = DefaultGraphQLPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: config.GetInsecure()} //nolint:gosec // opt-in via config

		httpClient = &http.Client{
			Transport: transport,
			Timeout:   config.GetTimeout(),
		}
	}

	wrapper := NewHTTPClient(httpClient, endpoint+path, opts.Logger)
	wrapper.SetToken(config.GetToken())
	wrapper.SetUserAgent(opts.UserAgent)

	opts.Logger.Debug("Search client initialized for %s", endpoint+path)

	return &Client{
		httpClient: wrapper,
		logger:     opts.Logger,
		url:        endpoint + path,
	}, nil
}

// URL returns the GraphQL URL requests are posted to.
func (c *Client) URL() string {
	return c.url
}

// Search runs query and returns the result summary. Exactly one request is
// made; every failure is a *SearchError.
func (c *Client) Search(ctx context.Context, query string) (*SearchResults, error) {
	var resp searchResponse

	err := c.httpClient.Post(ctx, searchOperation, graphQLRequest{
		Query:     searchDocument,
		Variables: searchVariables{Query: query},
	}, &resp)
	if err != nil {
		if se, ok := err.(*SearchError); ok {
			se.Query = query
		}
		c.logger.Debug("Search %q failed: %v", query, err)
		return nil, err
	}

	if len(resp.Errors) > 0 {
		err := &SearchError{Kind: KindGraphQL, Query: query, Errors: resp.Errors}
		c.logger.Debug("Search %q returned GraphQL errors: %v", query, err)
		return nil, err
	}

	results := resp.Data.Search.Results
	c.logger.Debug("Search %q: %d matches, limit hit %t", query, results.MatchCount, results.LimitHit)

	return &results, nil
}

// SearchRequest runs req.Text().
func (c *Client) SearchRequest(ctx context.Context, req SearchRequest) (*SearchResults, error) {
	return c.Search(ctx, req.Text())
}
