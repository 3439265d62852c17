package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/insightview/pkg/api"
	"github.com/devnullvoid/insightview/pkg/api/testutils"
)

func newClient(t *testing.T, server *httptest.Server, mutate ...func(*testutils.TestConfig)) *api.Client {
	t.Helper()

	cfg := testutils.NewTestConfig(server.URL)
	for _, m := range mutate {
		m(cfg)
	}

	client, err := api.NewClient(cfg, api.WithLogger(testutils.NewTestLogger()))
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, api.DefaultGraphQLPath, r.URL.Path)
		assert.Equal(t, "Search", r.URL.RawQuery)
		assert.Equal(t, "insightview", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		assert.NoError(t, err)

		var body struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "query Search(")
		assert.Equal(t, "repo:foo TODO", body.Variables["query"])

		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"search": map[string]interface{}{
					"results": map[string]interface{}{
						"limitHit":   true,
						"cloning":    []map[string]string{{"name": "github.com/a/b"}},
						"missing":    []map[string]string{},
						"timedout":   []map[string]string{{"name": "github.com/c/d"}},
						"matchCount": 42,
						"alert":      map[string]string{"title": "Slow", "description": "narrow it"},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := newClient(t, server)
	results, err := client.Search(context.Background(), "repo:foo TODO")

	require.NoError(t, err)
	require.NotNil(t, results)
	assert.True(t, results.LimitHit)
	assert.Equal(t, 42, results.MatchCount)
	assert.Equal(t, []api.Repo{{Name: "github.com/a/b"}}, results.Cloning)
	assert.Empty(t, results.Missing)
	assert.Equal(t, []api.Repo{{Name: "github.com/c/d"}}, results.Timedout)
	require.NotNil(t, results.Alert)
	assert.Equal(t, "Slow", results.Alert.Title)
}

func TestClient_Search_NoAlert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"search": map[string]interface{}{
					"results": map[string]interface{}{"matchCount": 3, "alert": nil},
				},
			},
		})
	}))
	defer server.Close()

	results, err := newClient(t, server).Search(context.Background(), "x")

	require.NoError(t, err)
	assert.Nil(t, results.Alert)
	assert.Equal(t, 3, results.MatchCount)
}

func TestClient_Search_WithToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token sgp_secret", r.Header.Get("Authorization"))
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	client := newClient(t, server, func(c *testutils.TestConfig) { c.Token = "sgp_secret" })
	_, err := client.Search(context.Background(), "x")

	require.NoError(t, err)
}

func TestClient_Search_CustomPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/graphql", r.URL.Path)
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	client := newClient(t, server, func(c *testutils.TestConfig) { c.GraphQLPath = "api/graphql" })
	assert.Equal(t, server.URL+"/api/graphql", client.URL())

	_, err := client.Search(context.Background(), "x")
	require.NoError(t, err)
}

func TestClient_Search_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    api.ErrorKind
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			kind: api.KindStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("{not json"))
			},
			kind: api.KindDecode,
		},
		{
			name: "graphql errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]interface{}{
					"data":   nil,
					"errors": []map[string]interface{}{{"message": "invalid query"}},
				})
			},
			kind: api.KindGraphQL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			}))
			defer server.Close()

			results, err := newClient(t, server).Search(context.Background(), "q")

			require.Error(t, err)
			assert.Nil(t, results)
			assert.Equal(t, 1, calls, "exactly one attempt")

			var se *api.SearchError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, "q", se.Query)
			assert.True(t, api.IsKind(err, tt.kind))
		})
	}
}

func TestClient_Search_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newClient(t, server).Search(context.Background(), "q")

	var se *api.SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_Search_GraphQLErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "a"}, {"message": "b"}},
		})
	}))
	defer server.Close()

	_, err := newClient(t, server).Search(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, `search "q": graphql: a; b`, err.Error())
}

func TestClient_Search_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newClient(t, server)
	server.Close()

	_, err := client.Search(context.Background(), "q")

	assert.True(t, api.IsKind(err, api.KindTransport))
}

func TestClient_Search_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newClient(t, server).Search(ctx, "q")

	assert.True(t, api.IsKind(err, api.KindTransport))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_SearchRequest_RendersParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "TODO lang:go repo:foo", body.Variables["query"])
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	_, err := newClient(t, server).SearchRequest(context.Background(), api.SearchRequest{
		Query:  "TODO",
		Params: map[string]string{"repo": "foo", "lang": "go"},
	})

	require.NoError(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := api.NewClient(testutils.NewTestConfig(""))
	assert.Error(t, err)

	_, err = api.NewClient(testutils.NewTestConfig("search.example.com"))
	assert.Error(t, err)

	_, err = api.NewClient(testutils.NewTestConfig("https://search.example.com/"))
	assert.NoError(t, err)
}

func TestNewClient_WithHTTPClient(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/1.0", r.Header.Get("User-Agent"))
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	client, err := api.NewClient(testutils.NewTestConfig(server.URL),
		api.WithHTTPClient(server.Client()),
		api.WithUserAgent("custom/1.0"),
	)
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "x")
	require.NoError(t, err)
}

func TestClient_LogsSearches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{}})
	}))
	defer server.Close()

	logger := testutils.NewTestLogger()
	client, err := api.NewClient(testutils.NewTestConfig(server.URL), api.WithLogger(logger))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "needle")
	require.NoError(t, err)

	testutils.AssertLogContains(t, logger, "debug", `Search "needle": 0 matches`)
}
