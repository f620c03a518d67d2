package kit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeUntil_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- ServeUntil(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeUntil_ReportsListenError(t *testing.T) {
	err := ServeUntil(context.Background(), "bad-address", http.NotFoundHandler(), zap.NewNop())
	require.Error(t, err)
}
