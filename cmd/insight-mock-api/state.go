package main

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/devnullvoid/insightview/pkg/api"
)

// maxMatches caps generated match counts; queries above it report limitHit.
const maxMatches = 1000

// Directive tokens recognized inside the query text. They let a developer
// drive every client branch from the search input: error:502 answers with
// that HTTP status, sleep:2s delays the response, count:N fixes matchCount,
// missing:N lists N missing repos and garbage answers with a non-JSON body.
const (
	tokenError   = "error:"
	tokenSleep   = "sleep:"
	tokenGraphQL = "graphql-error"
	tokenCount   = "count:"
	tokenMissing = "missing:"
	tokenCloning = "cloning:"
	tokenTimeout = "timedout:"
	tokenAlert   = "alert"
	tokenGarbage = "garbage"
)

// MockRepo is a repository in the fake corpus.
type MockRepo struct {
	Name string
}

// MockState holds the fake corpus and request bookkeeping.
type MockState struct {
	mu       sync.RWMutex
	Repos    []*MockRepo
	Requests map[string]int // Key: query text
}

// Reply is what the handler should send back for one query.
type Reply struct {
	Status  int
	Delay   time.Duration
	Garbage bool
	Errors  []api.GraphQLError
	Results api.SearchResults
}

func NewMockState() *MockState {
	state := &MockState{
		Requests: make(map[string]int),
	}

	orgs := []string{"acme", "globex", "initech", "umbrella"}
	projects := []string{"api", "web", "cli", "infra", "docs", "sdk"}
	for _, org := range orgs {
		for _, project := range projects {
			state.Repos = append(state.Repos, &MockRepo{
				Name: fmt.Sprintf("github.com/%s/%s", org, project),
			})
		}
	}

	return state
}

// RequestCount returns how many times query was answered.
func (s *MockState) RequestCount(query string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Requests[query]
}

// Answer builds the reply for query and records the request.
func (s *MockState) Answer(query string) Reply {
	s.mu.Lock()
	s.Requests[query]++
	s.mu.Unlock()

	reply := Reply{Status: 200}
	reply.Results = api.SearchResults{
		Cloning:  []api.Repo{},
		Missing:  []api.Repo{},
		Timedout: []api.Repo{},
	}

	count := defaultCount(query)
	for _, field := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(field, tokenError):
			if code, err := strconv.Atoi(strings.TrimPrefix(field, tokenError)); err == nil && code >= 100 && code <= 599 {
				reply.Status = code
			}
		case strings.HasPrefix(field, tokenSleep):
			if d, err := time.ParseDuration(strings.TrimPrefix(field, tokenSleep)); err == nil {
				reply.Delay = d
			}
		case field == tokenGraphQL:
			reply.Errors = append(reply.Errors, api.GraphQLError{
				Message: "mock failure for " + strconv.Quote(query),
				Path:    []interface{}{"search"},
			})
		case field == tokenGarbage:
			reply.Garbage = true
		case field == tokenAlert:
			reply.Results.Alert = &api.Alert{
				Title:       "Too many matches",
				Description: "Add a repo: filter to narrow the search.\nLiteral patterns are faster.",
			}
		case strings.HasPrefix(field, tokenCount):
			if n, err := strconv.Atoi(strings.TrimPrefix(field, tokenCount)); err == nil && n >= 0 {
				count = n
			}
		case strings.HasPrefix(field, tokenMissing):
			reply.Results.Missing = s.repos(field, tokenMissing, 0)
		case strings.HasPrefix(field, tokenCloning):
			reply.Results.Cloning = s.repos(field, tokenCloning, 1)
		case strings.HasPrefix(field, tokenTimeout):
			reply.Results.Timedout = s.repos(field, tokenTimeout, 2)
		}
	}

	if count > maxMatches {
		count = maxMatches
		reply.Results.LimitHit = true
	}
	reply.Results.MatchCount = count

	return reply
}

// repos returns the first N repos, starting at offset, for a "token:N" field.
func (s *MockState) repos(field, token string, offset int) []api.Repo {
	n, err := strconv.Atoi(strings.TrimPrefix(field, token))
	if err != nil || n <= 0 {
		return []api.Repo{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Repo, 0, n)
	for i := 0; i < n; i++ {
		repo := s.Repos[(offset+i)%len(s.Repos)]
		out = append(out, api.Repo{Name: repo.Name})
	}
	return out
}

// defaultCount is a stable pseudo match count so repeated queries agree.
func defaultCount(query string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(query))
	return int(h.Sum32() % maxMatches)
}
