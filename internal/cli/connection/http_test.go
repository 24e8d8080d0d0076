package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminClientHeaders(t *testing.T) {
	var gotKey, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Admin-Key")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "secret")
	resp, err := c.Get(context.Background(), "/admin/v1/services")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotKey != "secret" {
		t.Errorf("X-Admin-Key = %q", gotKey)
	}
	if !strings.HasPrefix(gotAgent, "esriagol-cli/") {
		t.Errorf("User-Agent = %q", gotAgent)
	}
}

func TestNewAdminClientDefaultsScheme(t *testing.T) {
	c := NewAdminClient("localhost:8080", "")
	if c.BaseURL() != "http://localhost:8080" {
		t.Errorf("base URL = %q", c.BaseURL())
	}

	c = NewAdminClient("https://gw.example.com/", "")
	if c.BaseURL() != "https://gw.example.com" {
		t.Errorf("base URL = %q", c.BaseURL())
	}
}

func TestPostSendsJSON(t *testing.T) {
	var gotContentType string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "secret")
	resp, err := c.Post(context.Background(), "/admin/v1/clients", map[string]string{"name": "field app"})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if !strings.Contains(gotBody, `"name":"field app"`) {
		t.Errorf("body = %q", gotBody)
	}
}

func TestParseResponseErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"AG-AUTH-4030","message":"service not allowed","details":"parcels"}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "secret")
	resp, err := c.Get(context.Background(), "/admin/v1/services")
	if err != nil {
		t.Fatal(err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	for _, want := range []string{"AG-AUTH-4030", "service not allowed", "parcels"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestParseResponseDecodesTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"services":["parcels","roads"]}`))
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "")
	resp, err := c.Get(context.Background(), "/v1/services")
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Services []string `json:"services"`
	}
	if err := ParseResponse(resp, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Services) != 2 {
		t.Errorf("services = %v", out.Services)
	}
}
