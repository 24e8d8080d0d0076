package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/msjade/esriagol/internal/core/domain"
)

func testConfig(t *testing.T, portal string) Config {
	t.Helper()
	t.Setenv("TEST_AGOL_USERNAME", "gis_user")
	t.Setenv("TEST_AGOL_PASSWORD", "gis_pass")
	return Config{
		Portal:            portal,
		Referer:           "https://www.arcgis.com",
		UsernameEnv:       "TEST_AGOL_USERNAME",
		PasswordEnv:       "TEST_AGOL_PASSWORD",
		ExpirationMinutes: 60,
		AuthTimeout:       5 * time.Second,
		DataTimeout:       5 * time.Second,
	}
}

func TestExchangeToken(t *testing.T) {
	expires := time.Now().Add(time.Hour).UnixMilli()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sharing/rest/generateToken" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		for key, want := range map[string]string{
			"f":          "json",
			"username":   "gis_user",
			"password":   "gis_pass",
			"client":     "referer",
			"expiration": "60",
		} {
			if got := r.PostForm.Get(key); got != want {
				t.Errorf("form[%s] = %q, want %q", key, got, want)
			}
		}
		fmt.Fprintf(w, `{"token":"UPSTREAM-TOKEN","expires":%d}`, expires)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	tok, expiresAt, err := c.ExchangeToken(context.Background())
	if err != nil {
		t.Fatalf("ExchangeToken: %v", err)
	}
	if tok != "UPSTREAM-TOKEN" {
		t.Errorf("token = %q", tok)
	}
	if expiresAt.UnixMilli() != expires {
		t.Errorf("expiresAt = %v", expiresAt)
	}
}

func TestExchangeTokenUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":{"code":400,"message":"Invalid credentials"}}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	_, _, err := c.ExchangeToken(context.Background())
	if !errors.Is(err, domain.ErrUpstreamAuth) {
		t.Fatalf("err = %v, want ErrUpstreamAuth", err)
	}
	if !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("upstream message lost: %v", err)
	}
}

func TestExchangeTokenMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"unexpected":true}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	_, _, err := c.ExchangeToken(context.Background())
	if !errors.Is(err, domain.ErrUpstreamAuth) {
		t.Fatalf("err = %v, want ErrUpstreamAuth", err)
	}
}

func TestExchangeTokenMissingCredentials(t *testing.T) {
	cfg := testConfig(t, "https://unused.example.com")
	t.Setenv("TEST_AGOL_PASSWORD", "")

	c := NewClient(cfg, nil, nil)
	_, _, err := c.ExchangeToken(context.Background())
	if !errors.Is(err, domain.ErrGatewayMisconfigured) {
		t.Fatalf("err = %v, want ErrGatewayMisconfigured", err)
	}
}

func TestQueryJSONRejectedPayloadPassesBodyThrough(t *testing.T) {
	body := `{"error":{"code":400,"message":"Invalid where clause"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	_, err := c.QueryJSON(context.Background(), srv.URL+"/layer/query", url.Values{"f": {"json"}})

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if string(rejected.Body) != body {
		t.Errorf("body = %s, want verbatim %s", rejected.Body, body)
	}
	if !errors.Is(err, domain.ErrUpstreamRejected) {
		t.Error("RejectedError should match the ErrUpstreamRejected sentinel")
	}
}

func TestQueryJSONMergesParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("where"); got != "1=1" {
			t.Errorf("where = %q", got)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token = %q", got)
		}
		fmt.Fprint(w, `{"features":[]}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	payload, err := c.QueryJSON(context.Background(), srv.URL+"/layer/query",
		url.Values{"where": {"1=1"}, "token": {"tok"}})
	if err != nil {
		t.Fatalf("QueryJSON: %v", err)
	}
	if _, ok := payload["features"]; !ok {
		t.Errorf("payload = %v", payload)
	}
}

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tile/3/2/1.pbf":
			w.Write([]byte{0x1a, 0x2b})
		case "/gone.pbf":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	ctx := context.Background()

	data, status, err := c.FetchBytes(ctx, "tile", srv.URL+"/tile/3/2/1.pbf", nil)
	if err != nil || status != http.StatusOK {
		t.Fatalf("FetchBytes = %v, status %d", err, status)
	}
	if len(data) != 2 {
		t.Errorf("data = %v", data)
	}

	// 404 is an empty-but-valid answer, not an error.
	_, status, err = c.FetchBytes(ctx, "tile", srv.URL+"/gone.pbf", nil)
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d", status)
	}

	// Any other failure status is upstream-unavailable.
	_, _, err = c.FetchBytes(ctx, "tile", srv.URL+"/boom", nil)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestFetchStyleJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vt/resources/styles/root.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token = %q", got)
		}
		fmt.Fprint(w, `{"version":8,"sources":{}}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(t, srv.URL), nil, nil)
	style, err := c.FetchStyleJSON(context.Background(), srv.URL+"/vt/", "tok")
	if err != nil {
		t.Fatalf("FetchStyleJSON: %v", err)
	}
	if style["version"] != float64(8) {
		t.Errorf("style = %v", style)
	}
}
