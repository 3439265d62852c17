package api

// DefaultGraphQLPath is the internal GraphQL handler of the search backend.
const DefaultGraphQLPath = "/.internal/graphql"

// searchOperation names the GraphQL operation; it is also sent as the raw
// URL query so backend logs can tell requests apart.
const searchOperation = "Search"

const searchDocument = `query Search(
	$query: String!,
) {
	search(query: $query, ) {
		results {
			limitHit
			cloning { name }
			missing { name }
			timedout { name }
			matchCount
			alert {
				title
				description
			}
		}
	}
}`

// Repo identifies a repository reported in a result set.
type Repo struct {
	Name string `json:"name"`
}

// Alert is an advisory the backend attaches to a search, such as a
// suggestion to narrow the query.
type Alert struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SearchResults is the summary of one search.
type SearchResults struct {
	LimitHit   bool   `json:"limitHit"`
	Cloning    []Repo `json:"cloning"`
	Missing    []Repo `json:"missing"`
	Timedout   []Repo `json:"timedout"`
	MatchCount int    `json:"matchCount"`
	Alert      *Alert `json:"alert,omitempty"`
}

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

type graphQLRequest struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables"`
}

type searchVariables struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Data struct {
		Search struct {
			Results SearchResults `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
