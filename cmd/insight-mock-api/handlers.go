package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devnullvoid/insightview/pkg/api"
)

type graphQLRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Query string `json:"query"`
	} `json:"variables"`
}

type graphQLResponse struct {
	Data   interface{}        `json:"data"`
	Errors []api.GraphQLError `json:"errors,omitempty"`
}

func handleGraphQL(state *MockState, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "token "+token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Query, "search(") {
			writeJSON(w, http.StatusOK, graphQLResponse{
				Errors: []api.GraphQLError{{Message: "unsupported operation"}},
			})
			return
		}

		reply := state.Answer(req.Variables.Query)

		if reply.Delay > 0 {
			select {
			case <-time.After(reply.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if reply.Status != http.StatusOK {
			http.Error(w, http.StatusText(reply.Status), reply.Status)
			return
		}

		if reply.Garbage {
			w.Header().Set("Content-Type", "text/html")
			if _, err := w.Write([]byte("<html>not graphql</html>")); err != nil {
				log.Printf("mock-api: failed to write response: %v", err)
			}
			return
		}

		resp := graphQLResponse{Errors: reply.Errors}
		if len(reply.Errors) == 0 {
			resp.Data = map[string]interface{}{
				"search": map[string]interface{}{
					"results": reply.Results,
				},
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withRequestID echoes the client's X-Request-Id, or assigns one, and logs
// each request with it.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		log.Printf("%s %s?%s (request %s)", r.Method, r.URL.Path, r.URL.RawQuery, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("mock-api: failed to encode response: %v", err)
	}
}
