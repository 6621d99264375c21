package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter is the [Router] behind the API. Patterns go to an [http.ServeMux], so a path may carry
// wildcards like {ref} and a known path hit with the wrong method answers 405.
//
// Middleware is bound when a route is registered, so call [BasicRouter.Use] first.
type BasicRouter struct {
	mux      *http.ServeMux
	chain    []Middleware
	patterns []string
}

// NewBasicRouter returns an empty router.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. The first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle registers handler for method and path. The method is case-insensitive.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(r.Apply(handler), strings.ToUpper(method)+" "+path)
}

// Handler registers h under every pattern it reports, sharing one wrapped instance.
func (r *BasicRouter) Handler(h Handler) {
	r.register(r.Apply(h), h.Routes()...)
}

// Routes lists the registered patterns in sorted order.
func (r *BasicRouter) Routes() []string {
	return slices.Sorted(slices.Values(r.patterns))
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler in the current middleware chain.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.chain) {
		handler = mw(handler)
	}
	return handler
}

func (r *BasicRouter) register(h http.Handler, patterns ...string) {
	for _, p := range patterns {
		r.mux.Handle(p, h)
		r.patterns = append(r.patterns, p)
	}
}
