package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMatchWildcardRoute(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    []string
		ok      bool
	}{
		{"/api/v1/exports/abc", "/api/v1/exports/*", []string{"abc"}, true},
		{"/api/v1/exports/abc/errors", "/api/v1/exports/*/errors", []string{"abc"}, true},
		{"/api/v1/exports/abc/other", "/api/v1/exports/*/errors", nil, false},
		{"/api/v1/download/abc/Extracao.xlsx", "/api/v1/download/*/*", []string{"abc", "Extracao.xlsx"}, true},
		{"/swagger/index.html", "/swagger/*", []string{"index.html"}, true},
		{"/swagger/a/b.css", "/swagger/*", []string{"a/b.css"}, true},
		{"/swagger", "/swagger/*", nil, false},
		{"/api/v1/exports/", "/api/v1/exports/*", nil, false},
	}
	for _, tt := range tests {
		got, ok := matchWildcardRoute(tt.path, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s ~ %s: ok=%v, want %v", tt.path, tt.pattern, ok, tt.ok)
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("%s ~ %s: params=%v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestRouterDispatch(t *testing.T) {
	r := New()
	reply := func(name string) HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(name + ":" + strings.Join(Params(req), ",")))
		}
	}
	r.GET("/api/v1/exports", reply("list"))
	r.GET("/api/v1/exports/*/errors", reply("errors"))
	r.GET("/api/v1/exports/*", reply("get"))
	r.DELETE("/api/v1/exports/*", reply("delete"))

	tests := []struct {
		method string
		path   string
		code   int
		body   string
	}{
		{http.MethodGet, "/api/v1/exports", 200, "list:"},
		{http.MethodGet, "/api/v1/exports/j1/errors", 200, "errors:j1"},
		{http.MethodGet, "/api/v1/exports/j1", 200, "get:j1"},
		{http.MethodDelete, "/api/v1/exports/j1", 200, "delete:j1"},
		{http.MethodPost, "/api/v1/exports", 405, ""},
		{http.MethodPut, "/api/v1/exports/j1", 405, ""},
		{http.MethodGet, "/api/v1/unknown", 404, ""},
	}
	for _, tt := range tests {
		// repeat to catch order-dependent matching
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			r.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.code {
				t.Fatalf("%s %s: code %d, want %d", tt.method, tt.path, rec.Code, tt.code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Fatalf("%s %s: body %q, want %q", tt.method, tt.path, rec.Body.String(), tt.body)
			}
		}
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/exports/j1", nil))
	if got := rec.Header().Get("Allow"); got != "DELETE, GET" {
		t.Fatalf("Allow = %q", got)
	}
}
