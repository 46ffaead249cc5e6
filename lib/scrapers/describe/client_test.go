package describe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeOrg serves the token endpoint and the describe endpoints. Every
// token it issues is distinct, and data calls bearing an expired token
// get a 401, which is how the real service signals a dead session.
type fakeOrg struct {
	server *httptest.Server

	mu           sync.Mutex
	logins       int
	expiredToken string
}

func newFakeOrg(t *testing.T) *fakeOrg {
	t.Helper()
	org := &fakeOrg{}

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		org.mu.Lock()
		org.logins++
		n := org.logins
		org.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": fmt.Sprintf("session-%d", n),
			"instance_url": org.server.URL,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		org.mu.Lock()
		expired := org.expiredToken
		org.mu.Unlock()
		if expired != "" && r.Header.Get("Authorization") == "Bearer "+expired {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"name": "Account"})
	})

	org.server = httptest.NewServer(mux)
	t.Cleanup(org.server.Close)
	return org
}

func (o *fakeOrg) loginCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.logins
}

func (o *fakeOrg) expire(token string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expiredToken = token
}

func newTestClient(org *fakeOrg) *Client {
	return NewClient(ClientOptions{
		LoginURL: org.server.URL,
		Username: "ops@example.com",
		Password: "hunter2",
	})
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg(t)
	client := newTestClient(org)

	desc, err := client.Describe(ctx, "Account")
	require.NoError(t, err)
	require.Equal(t, "Account", desc.Name)
	require.Equal(t, 1, org.loginCount())
}

func TestConcurrentDescribesShareOneRelogin(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg(t)
	client := newTestClient(org)

	require.NoError(t, client.Login(ctx))
	org.expire("session-1")

	// a full chunk of fetches lands on the dead session at once
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := client.Describe(ctx, "Account")
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-errs)
	}

	// one goroutine refreshed the session; the rest reused its token
	require.Equal(t, 2, org.loginCount())
}

func TestLoginRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "authentication failure",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientOptions{LoginURL: server.URL, Username: "ops@example.com"})
	err := client.Login(context.Background())
	require.ErrorIs(t, err, ErrLoginDisabled)
}
