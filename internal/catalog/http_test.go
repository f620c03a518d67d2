package catalog_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Bookshelf/internal/catalog"
)

const metricsToken = "test-token"

func newCatalogTS(t *testing.T, cfg catalog.Config, reg *prometheus.Registry) *httptest.Server {
	t.Helper()

	deps := catalog.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "catalog",
		Registry:       reg,
		MetricsEnabled: reg != nil,
		MetricsToken:   metricsToken,
	}

	s, err := catalog.NewServer(catalog.NewStore(), cfg, deps)
	require.NoError(t, err)

	ts := httptest.NewServer(catalog.NewHandler(s, deps))
	t.Cleanup(ts.Close)
	return ts
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func doGraphQL(t *testing.T, baseURL, query string, vars map[string]any) (*http.Response, gqlResponse) {
	t.Helper()

	b, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	return do(t, http.MethodPost, baseURL+catalog.GraphQLPath, "application/json", bytes.NewReader(b), nil)
}

func do(t *testing.T, method, u, contentType string, body io.Reader, headers map[string]string) (*http.Response, gqlResponse) {
	t.Helper()

	req, err := http.NewRequest(method, u, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out gqlResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), "body=%s", raw)
	}
	return resp, out
}

func TestGraphQL_QueryOverPOST(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	resp, out := doGraphQL(t, ts.URL, `query($id: Int!) { book(id: $id) { id name authorId author { name } } }`,
		map[string]any{"id": 1})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, out.Errors)
	require.JSONEq(t, `{"book":{"id":1,"name":"Harry Potter and the Chamber of Secrets","authorId":1,"author":{"name":"J. K. Rowling"}}}`,
		string(out.Data))
}

func TestGraphQL_MutationThenRead(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	resp, out := doGraphQL(t, ts.URL, `mutation { addBook(name: "X", authorId: 999) { id authorId author { id } } }`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"addBook":{"id":9,"authorId":999,"author":null}}`, string(out.Data))

	_, out = doGraphQL(t, ts.URL, `{ books { id } }`, nil)
	var got struct {
		Books []struct{ ID int } `json:"books"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.Len(t, got.Books, 9)
	require.Equal(t, 9, got.Books[8].ID)
}

func TestGraphQL_ConcurrentMutations(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(map[string]any{"query": `mutation { addAuthor(name: "A") { id } }`})
			resp, err := http.Post(ts.URL+catalog.GraphQLPath, "application/json", bytes.NewReader(b))
			if err != nil {
				t.Error(err)
				return
			}
			_ = resp.Body.Close()
		}()
	}
	wg.Wait()

	_, out := doGraphQL(t, ts.URL, `{ authors { id } }`, nil)
	var got struct {
		Authors []struct{ ID int } `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.Len(t, got.Authors, 3+n)

	seen := map[int]bool{}
	for _, a := range got.Authors {
		require.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
}

func TestGraphQL_MissingArgument(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	resp, out := doGraphQL(t, ts.URL, `{ book { id } }`, nil)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, out.Errors)
	require.Empty(t, out.Data)
}

func TestGraphQL_QueryOverGET(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	q := url.Values{"query": {`{ author(id: 3) { name book { name } } }`}}
	resp, out := do(t, http.MethodGet, ts.URL+catalog.GraphQLPath+"?"+q.Encode(), "", nil, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"author":{"name":"Brent Weeks","book":[{"name":"The Way of Shadows"},{"name":"Beyond the Shadows"}]}}`,
		string(out.Data))
}

func TestGraphQL_MutationOverGETRejected(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	q := url.Values{"query": {`mutation { addAuthor(name: "nope") { id } }`}}
	resp, out := do(t, http.MethodGet, ts.URL+catalog.GraphQLPath+"?"+q.Encode(), "", nil, nil)

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
	require.Len(t, out.Errors, 1)

	_, out = doGraphQL(t, ts.URL, `{ authors { id } }`, nil)
	var got struct {
		Authors []struct{ ID int } `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.Len(t, got.Authors, 3)
}

func TestGraphQL_NamedOperationSelection(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	doc := `query List { books { id } } mutation Add { addAuthor(name: "Z") { id } }`
	q := url.Values{"query": {doc}, "operationName": {"List"}}
	resp, _ := do(t, http.MethodGet, ts.URL+catalog.GraphQLPath+"?"+q.Encode(), "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	q.Set("operationName", "Add")
	resp, _ = do(t, http.MethodGet, ts.URL+catalog.GraphQLPath+"?"+q.Encode(), "", nil, nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGraphQL_ApplicationGraphQLBody(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	resp, out := do(t, http.MethodPost, ts.URL+catalog.GraphQLPath, "application/graphql",
		strings.NewReader(`{ book(id: 999) { id } }`), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"book":null}`, string(out.Data))
}

func TestGraphQL_TransportErrors(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)
	u := ts.URL + catalog.GraphQLPath

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		want        int
	}{
		{name: "missing query", method: http.MethodPost, target: u, contentType: "application/json", body: `{}`, want: http.StatusBadRequest},
		{name: "empty body", method: http.MethodPost, target: u, contentType: "application/json", want: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, target: u, contentType: "application/json", body: `{"query":`, want: http.StatusBadRequest},
		{name: "bad variables", method: http.MethodGet, target: u + "?query=%7Bbooks%7Bid%7D%7D&variables=%7B", want: http.StatusBadRequest},
		{name: "unsupported content type", method: http.MethodPost, target: u, contentType: "text/plain", body: `{ books { id } }`, want: http.StatusUnsupportedMediaType},
		{name: "method", method: http.MethodPut, target: u, contentType: "application/json", body: `{}`, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, tt.method, tt.target, tt.contentType, strings.NewReader(tt.body), nil)
			require.Equal(t, tt.want, resp.StatusCode)
			require.Len(t, out.Errors, 1)
			require.NotEmpty(t, out.Errors[0].Message)
		})
	}
}

func TestGraphQL_GraphiQL(t *testing.T) {
	enabled := newCatalogTS(t, catalog.Config{GraphiQL: true}, nil)
	disabled := newCatalogTS(t, catalog.Config{GraphiQL: false}, nil)
	html := map[string]string{"Accept": "text/html"}

	resp, _ := do(t, http.MethodGet, enabled.URL+catalog.GraphQLPath, "", nil, html)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, out := do(t, http.MethodGet, enabled.URL+catalog.GraphQLPath+"?raw&query=%7Bbooks%7Bid%7D%7D", "", nil, html)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Data)

	resp, _ = do(t, http.MethodGet, disabled.URL+catalog.GraphQLPath, "", nil, html)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndReady(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{}, nil)

	for _, p := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + p)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, p)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newCatalogTS(t, catalog.Config{}, reg)

	doGraphQL(t, ts.URL, `{ books { id } }`, nil)
	doGraphQL(t, ts.URL, `mutation { addAuthor(name: "M") { id } }`, nil)

	resp, _ := do(t, http.MethodGet, ts.URL+"/metrics", "", nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+metricsToken)
	mresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer mresp.Body.Close()
	raw, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, mresp.StatusCode)
	body := string(raw)
	require.Contains(t, body, `graphql_operations_total{operation="query",status="200"} 1`)
	require.Contains(t, body, `graphql_operations_total{operation="mutation",status="200"} 1`)
	require.Contains(t, body, "catalog_authors 4")
	require.Contains(t, body, "catalog_books 8")
	require.Contains(t, body, `path="/graphql"`)
}

func TestRateLimit(t *testing.T) {
	ts := newCatalogTS(t, catalog.Config{RateLimit: 2}, nil)

	for i := 0; i < 2; i++ {
		resp, _ := doGraphQL(t, ts.URL, `{ authors { id } }`, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ := doGraphQL(t, ts.URL, `{ authors { id } }`, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	hresp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	_ = hresp.Body.Close()
	require.Equal(t, http.StatusOK, hresp.StatusCode)
}
