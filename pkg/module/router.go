package module

import (
	"net/http"
	"strings"
)

// Router dispatches each request to the module mounted at the first
// path segment. Paths that match no mount go to a plain ServeMux, which
// serves root-level endpoints like health checks.
type Router struct {
	mounts   map[string]*Module
	fallback *http.ServeMux
}

// NewRouter creates a Router with no mounts.
func NewRouter() *Router {
	return &Router{
		mounts:   make(map[string]*Module),
		fallback: http.NewServeMux(),
	}
}

// HandleNative registers a handler on the fallback mux, outside any module.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, handler)
}

// Mount attaches a module at its prefix. A later Mount with the same
// prefix replaces the earlier one.
func (r *Router) Mount(m *Module) {
	r.mounts[m.prefix] = m
}

// ServeHTTP strips a trailing slash, resolves the first path segment,
// and hands the request to the mounted module or the fallback mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
		req.URL.Path = path
	}

	prefix := path
	if len(path) > 1 {
		if idx := strings.Index(path[1:], "/"); idx >= 0 {
			prefix = path[:idx+1]
		}
	}

	if m, ok := r.mounts[prefix]; ok {
		m.Serve(w, req)
		return
	}

	r.fallback.ServeHTTP(w, req)
}
