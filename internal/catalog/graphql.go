package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"Bookshelf/pkg/kit"
)

const maxQueryBody = 1 << 20

// requestError is a transport-level failure reported in the GraphQL error
// envelope before anything is executed.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

var (
	errMethodNotAllowed = &requestError{http.StatusMethodNotAllowed, "GraphQL only supports GET and POST requests."}
	errMutationOverGET  = &requestError{http.StatusMethodNotAllowed, "Can only perform a mutation operation from a POST request."}
	errNoQuery          = &requestError{http.StatusBadRequest, "Must provide query string."}
	errBadVariables     = &requestError{http.StatusBadRequest, "Variables are invalid JSON."}
	errBadJSON          = &requestError{http.StatusBadRequest, "POST body sent invalid JSON."}
	errBadBody          = &requestError{http.StatusBadRequest, "Could not read request body."}
	errBadContentType   = &requestError{http.StatusUnsupportedMediaType, "Unsupported content type."}
	errBodyTooLarge     = &requestError{http.StatusRequestEntityTooLarge, "Request body too large."}
)

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type gqlErrorResponse struct {
	Errors []gqlError `json:"errors"`
}

type gqlError struct {
	Message string `json:"message"`
}

// GraphQLHandler executes GraphQL documents against Schema. GET requests from
// a browser get the GraphiQL console when GraphiQL is set.
type GraphQLHandler struct {
	Schema   *graphql.Schema
	GraphiQL bool
	Log      *zap.Logger
	Metrics  *Metrics
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeGQLError(w, errMethodNotAllowed)
		return
	}

	req, err := decodeGQLRequest(w, r)
	if err != nil {
		writeGQLError(w, err)
		return
	}

	if r.Method == http.MethodGet && h.GraphiQL && wantsGraphiQL(r) {
		h.serveGraphiQL(w, req)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeGQLError(w, errNoQuery)
		return
	}

	opType := operationType(req.Query, req.OperationName)
	if r.Method == http.MethodGet && opType == ast.Mutation {
		w.Header().Set("Allow", http.MethodPost)
		writeGQLError(w, errMutationOverGET)
		return
	}

	resp := h.Schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)

	status := http.StatusOK
	if len(resp.Errors) > 0 && len(resp.Data) == 0 {
		status = http.StatusBadRequest
	}
	h.Metrics.observeOperation(opType, status)

	kit.WriteJSON(w, status, resp)
}

// decodeGQLRequest merges the URL parameters with the POST body; fields set in
// the body win.
func decodeGQLRequest(w http.ResponseWriter, r *http.Request) (gqlRequest, error) {
	q := r.URL.Query()
	req := gqlRequest{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if v := q.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return gqlRequest{}, errBadVariables
		}
	}

	if r.Method != http.MethodPost {
		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	defer func() { _ = r.Body.Close() }()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/graphql":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return gqlRequest{}, bodyError(err, errBadBody)
		}
		req.Query = string(raw)

	case "application/json", "":
		var body gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return req, nil
			}
			return gqlRequest{}, bodyError(err, errBadJSON)
		}
		if body.Query != "" {
			req.Query = body.Query
		}
		if body.OperationName != "" {
			req.OperationName = body.OperationName
		}
		if body.Variables != nil {
			req.Variables = body.Variables
		}

	default:
		return gqlRequest{}, errBadContentType
	}

	return req, nil
}

func bodyError(err error, fallback *requestError) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return fallback
}

// operationType reports the type of the operation that will run. Documents
// that fail to parse report "" and are left to the executor to reject.
func operationType(query, operationName string) ast.Operation {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return ""
	}

	ops := doc.Operations
	if operationName == "" {
		if len(ops) == 1 {
			return ops[0].Operation
		}
		return ""
	}
	for _, op := range ops {
		if op.Name == operationName {
			return op.Operation
		}
	}
	return ""
}

func wantsGraphiQL(r *http.Request) bool {
	if _, raw := r.URL.Query()["raw"]; raw {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeGQLError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var re *requestError
	if errors.As(err, &re) {
		status = re.status
	}

	kit.WriteJSON(w, status, gqlErrorResponse{
		Errors: []gqlError{{Message: err.Error()}},
	})
}
