package router

import (
	"net/http"
	"slices"
	"sync"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers method-qualified ServeMux patterns behind a middleware
// chain. Groups share the mux and the route table of their parent.
type Router struct {
	mux    *http.ServeMux
	chain  []Middleware
	routes *routeTable
}

type routeTable struct {
	mu       sync.Mutex
	patterns []string
}

func (t *routeTable) add(pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.patterns = append(t.patterns, pattern)
}

// New creates a Router whose chain runs, in order, before every route.
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		chain:  middleware,
		routes: &routeTable{},
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) Get(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, middleware...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, middleware...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, middleware...)
}

// Handle registers "METHOD pattern". Route middleware runs after the chain.
func (r *Router) Handle(method, pattern string, h http.Handler, middleware ...Middleware) {
	full := method + " " + pattern
	r.mux.Handle(full, chain(h, append(slices.Clone(r.chain), middleware...)))
	r.routes.add(full)
}

// Group returns a Router that adds middleware to every route registered
// through it.
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		chain:  append(slices.Clone(r.chain), middleware...),
		routes: r.routes,
	}
}

// Routes lists the registered patterns, sorted.
func (r *Router) Routes() []string {
	r.routes.mu.Lock()
	defer r.routes.mu.Unlock()
	out := slices.Clone(r.routes.patterns)
	slices.Sort(out)
	return out
}

func chain(h http.Handler, middleware []Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
