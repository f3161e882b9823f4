package router

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type route struct {
	method  string
	pattern string
	handler HandlerFunc
}

// Router matches exact paths first, then wildcard patterns in registration
// order. A "*" segment matches one path segment; a trailing "*" matches the
// rest of the path. Register specific patterns before generic ones.
type Router struct {
	mux      *http.ServeMux
	routes   map[string]HandlerFunc // key = METHOD:PATH
	paths    map[string]bool        // track registered paths
	wildcard []route
}

type paramsKey struct{}

func New() *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}

	// Catch-all handler, the router does its own matching
	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		r.dispatch(lrw, req)

		duration := time.Since(start)
		color := statusColor(lrw.statusCode)
		methodColor := methodColor(req.Method)

		log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
			colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
			methodColor, req.Method, colorReset,
			req.URL.Path,
			color, lrw.statusCode, colorReset,
			colorBlue, duration, colorReset,
		)
	})

	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if h, ok := r.routes[req.Method+":"+path]; ok {
		h(w, req)
		return
	}

	allowed := map[string]bool{}
	if r.paths[path] {
		for key := range r.routes {
			if method, p, _ := strings.Cut(key, ":"); p == path {
				allowed[method] = true
			}
		}
	}

	for _, rt := range r.wildcard {
		params, ok := matchWildcardRoute(path, rt.pattern)
		if !ok {
			continue
		}
		if rt.method != req.Method {
			allowed[rt.method] = true
			continue
		}
		rt.handler(w, req.WithContext(context.WithValue(req.Context(), paramsKey{}, params)))
		return
	}

	if len(allowed) > 0 {
		methods := make([]string, 0, len(allowed))
		for m := range allowed {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		w.Header().Set("Allow", strings.Join(methods, ", "))
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// Params returns the values matched by the wildcard segments of the route,
// in order. A trailing wildcard yields the remaining path as one value.
func Params(req *http.Request) []string {
	params, _ := req.Context().Value(paramsKey{}).([]string)
	return params
}

// Param returns the i-th wildcard value, or "" when there is none
func Param(req *http.Request, i int) string {
	params := Params(req)
	if i < 0 || i >= len(params) {
		return ""
	}
	return params[i]
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
// and returns the matched wildcard values.
func matchWildcardRoute(requestPath, routePattern string) ([]string, bool) {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")
	last := len(routeSegments) - 1

	if routeSegments[last] == "*" {
		// trailing wildcard needs at least one non-empty segment
		if len(requestSegments) < len(routeSegments) {
			return nil, false
		}
	} else if len(requestSegments) != len(routeSegments) {
		return nil, false
	}

	var params []string
	for i, routeSegment := range routeSegments {
		if routeSegment != "*" {
			if requestSegments[i] != routeSegment {
				return nil, false
			}
			continue
		}
		value := requestSegments[i]
		if i == last {
			value = strings.Join(requestSegments[i:], "/")
		}
		if value == "" {
			return nil, false
		}
		params = append(params, value)
	}
	return params, true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	if strings.Contains(path, "*") {
		r.wildcard = append(r.wildcard, route{method: method, pattern: path, handler: handler})
		return
	}
	r.routes[method+":"+path] = handler
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Paths lists exact and wildcard patterns, for tests and startup logs
func (r *Router) Paths() []string {
	var out []string
	for p := range r.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	for _, rt := range r.wildcard {
		out = append(out, rt.method+" "+rt.pattern)
	}
	return out
}

// Handler returns the router as an http.Handler, e.g. to wrap it in
// middleware or mount it on an http.Server.
func (r *Router) Handler() http.Handler { return r.mux }

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut:
		return colorYellow
	case http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
