package catalog

import (
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var graphiqlTmpl = template.Must(template.New("graphiql").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>GraphiQL</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
  <style>body { height: 100vh; margin: 0; overflow: hidden; } #graphiql { height: 100vh; }</style>
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script src="https://unpkg.com/react@18/umd/react.production.min.js" crossorigin></script>
  <script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js" crossorigin></script>
  <script src="https://unpkg.com/graphiql@3/graphiql.min.js" crossorigin></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: window.location.pathname });
    ReactDOM.createRoot(document.getElementById('graphiql')).render(
      React.createElement(GraphiQL, {
        fetcher: fetcher,
        defaultQuery: {{.Query}},
        variables: {{.Variables}},
        operationName: {{.OperationName}},
      })
    );
  </script>
</body>
</html>
`))

type graphiqlPage struct {
	Query         string
	Variables     string
	OperationName string
}

func (h *GraphQLHandler) serveGraphiQL(w http.ResponseWriter, req gqlRequest) {
	page := graphiqlPage{
		Query:         req.Query,
		OperationName: req.OperationName,
	}
	if req.Variables != nil {
		if raw, err := json.MarshalIndent(req.Variables, "", "  "); err == nil {
			page.Variables = string(raw)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := graphiqlTmpl.Execute(w, page); err != nil && h.Log != nil {
		h.Log.Warn("render graphiql failed", zap.Error(err))
	}
}
