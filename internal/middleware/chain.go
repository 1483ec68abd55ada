// Package middleware builds the HTTP middleware stack wrapped around the
// contactform routes.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/validation"
)

// MiddlewareChain manages the HTTP middleware stack.
//
// Middlewares run in the order they were added: the first added is the
// outermost wrapper. The default stack is, outer to inner:
//  1. request logging
//  2. CORS
//  3. security headers
type MiddlewareChain struct {
	config      *config.Config
	logger      logging.Logger
	middlewares []Middleware
}

// Middleware represents a single middleware function
type Middleware func(http.Handler) http.Handler

// MiddlewareDependencies contains all dependencies needed for middleware construction
type MiddlewareDependencies struct {
	Config *config.Config
	Logger logging.Logger
}

// NewMiddlewareChain creates a chain holding the default stack.
//
// Panics if Config or Logger is nil.
func NewMiddlewareChain(deps MiddlewareDependencies) *MiddlewareChain {
	if deps.Config == nil {
		panic("MiddlewareChain: config cannot be nil")
	}
	if deps.Logger == nil {
		panic("MiddlewareChain: logger cannot be nil")
	}

	chain := &MiddlewareChain{
		config:      deps.Config,
		logger:      deps.Logger.WithComponent("http"),
		middlewares: make([]Middleware, 0, 4),
	}
	chain.buildDefaultStack()
	return chain
}

func (mc *MiddlewareChain) buildDefaultStack() {
	mc.AddMiddleware(mc.createLoggingMiddleware())
	mc.AddMiddleware(mc.createCORSMiddleware())
	mc.AddMiddleware(SecurityHeaders(mc.config.Server.Environment))
}

// AddMiddleware adds a middleware inside the ones already added.
func (mc *MiddlewareChain) AddMiddleware(middleware Middleware) {
	mc.middlewares = append(mc.middlewares, middleware)
}

// Apply wraps handler with every middleware in the chain. It has the shape
// of a chi middleware, so it can be passed to Router.Use.
//
// Panics if handler is nil.
func (mc *MiddlewareChain) Apply(handler http.Handler) http.Handler {
	if handler == nil {
		panic("MiddlewareChain.Apply: handler cannot be nil")
	}

	wrappedHandler := handler
	for i := len(mc.middlewares) - 1; i >= 0; i-- {
		middleware := mc.middlewares[i]
		if middleware == nil {
			panic(fmt.Sprintf("MiddlewareChain.Apply: middleware at index %d is nil", i))
		}
		wrappedHandler = middleware(wrappedHandler)
	}
	return wrappedHandler
}

// createLoggingMiddleware logs one line per request with the chi request id.
func (mc *MiddlewareChain) createLoggingMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id := chimw.GetReqID(r.Context()); id != "" {
				fields = append(fields, "request_id", id)
			}

			if status >= http.StatusInternalServerError {
				mc.logger.Warn(r.Context(), nil, "Request failed", fields...)
				return
			}
			mc.logger.Debug(r.Context(), "Request handled", fields...)
		})
	}
}

// createCORSMiddleware echoes allowed origins. Development falls back to a
// wildcard; production sends no CORS header for unknown origins.
func (mc *MiddlewareChain) createCORSMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && validation.ValidateOrigin(origin, mc.config.Server.Origins()) == nil {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			} else if mc.config.Server.Environment == "development" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
