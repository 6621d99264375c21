// package server contains middleware & handlers for the chart conversion HTTP API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/formats"
	"golang.org/x/time/rate"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the chart service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the "METHOD /path" patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options configures the API router.
type Options struct {
	Logger        *log.Logger
	DefaultFormat formats.Format
	ChartWidth    int
	RateLimit     float64 // requests per second; zero disables limiting
	Burst         int
	MaxBodyBytes  int64
	ExportOptions []formats.ExportOption
}

// NewRouter builds the API: chart endpoints always, library endpoints when library is non-nil.
func NewRouter(opts Options, library Library) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = formats.FormatFreeShow
	}

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), Logging(opts.Logger))
	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		router.Use(RateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), burst)))
	}
	if opts.MaxBodyBytes > 0 {
		router.Use(LimitBody(opts.MaxBodyBytes))
	}

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	router.Handler(NewChartHandler(opts))
	if library != nil {
		router.Handler(NewLibraryHandler(library, opts))
	}

	routes := router.Routes()
	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"routes": routes})
	}))
	return router
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts down gracefully.
// ready, when non-nil, receives the bound address once the listener is open.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *log.Logger, ready chan<- string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("serving chart API", "addr", listener.Addr().String())
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
