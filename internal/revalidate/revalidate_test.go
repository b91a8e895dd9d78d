package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
)

func TestWebhookSendsSecretAndPaths(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, "s3cret", logger.Nop())
	n.Trigger("/", "/blog")

	select {
	case body := <-got:
		assert.Equal(t, "s3cret", body["secret"])
		assert.Equal(t, []any{"/", "/blog"}, body["paths"])
	case <-time.After(2 * time.Second):
		t.Fatal("revalidation request not received")
	}
}

func TestWebhookReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := New(srv.URL, "wrong", logger.Nop()).(*webhook)
	err := n.Send(context.Background(), "/")
	require.Error(t, err)
	assert.Equal(t, statusError(http.StatusUnauthorized), err)
}

func TestNewWithoutURLIsNop(t *testing.T) {
	assert.IsType(t, Nop{}, New("", "", nil))
}
