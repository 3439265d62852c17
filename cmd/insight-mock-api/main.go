// Command insight-mock-api serves a fake search GraphQL endpoint for local
// development. Directive tokens in the query text (error:502, sleep:2s,
// graphql-error, garbage, alert, count:N, missing:N, cloning:N, timedout:N)
// select the response.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devnullvoid/insightview/pkg/api"
)

func newRouter(state *MockState, graphqlPath, token string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(graphqlPath, handleGraphQL(state, token)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	r.Use(withRequestID)
	return r
}

func main() {
	var port int
	var graphqlPath, token string

	flag.IntVar(&port, "port", 8080, "Port to listen on")
	flag.StringVar(&graphqlPath, "graphql-path", api.DefaultGraphQLPath, "Path of the GraphQL handler")
	flag.StringVar(&token, "token", "", "Require this access token when set")
	flag.Parse()

	state := NewMockState()

	log.Printf("Starting mock server on :%d (GraphQL at %s)", port, graphqlPath)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newRouter(state, graphqlPath, token),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  30 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
