package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name  string
		token string
		authz string
		want  int
	}{
		{name: "valid", token: "s3cret", authz: "Bearer s3cret", want: http.StatusOK},
		{name: "wrong token", token: "s3cret", authz: "Bearer nope", want: http.StatusForbidden},
		{name: "no scheme", token: "s3cret", authz: "s3cret", want: http.StatusForbidden},
		{name: "missing header", token: "s3cret", want: http.StatusForbidden},
		{name: "no token configured", token: "", authz: "Bearer ", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.authz != "" {
				req.Header.Set("Authorization", tt.authz)
			}
			rec := httptest.NewRecorder()

			MetricsAuth(tt.token)(ok).ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}
