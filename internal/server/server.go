// Package server serves the New Contact form over HTTP. Plain form posts
// and live WebSocket sessions both drive a contact.Form.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/contact"
	cerrors "github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/middleware"
	"github.com/conneroisu/contactform/internal/validation"
	"github.com/conneroisu/contactform/internal/view"
)

// Server owns the router, the HTTP listener, and the live sessions.
type Server struct {
	config  *config.Config
	creator contact.Creator
	logger  logging.Logger
	policy  contact.Policy
	handler http.Handler

	// flights coalesces submits per form id across requests and sessions.
	flights *singleflight.Group
	limiter *sessionLimiter

	serverMutex sync.RWMutex
	httpServer  *http.Server
	addr        string

	sessions     sync.WaitGroup
	done         chan struct{}
	shutdownOnce sync.Once
}

// New builds a Server whose forms submit through creator.
func New(cfg *config.Config, creator contact.Creator, logger logging.Logger) *Server {
	if cfg == nil {
		panic("server.New: config cannot be nil")
	}
	if creator == nil {
		panic("server.New: creator cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogger(logging.DefaultConfig())
	}

	s := &Server{
		config:  cfg,
		creator: creator,
		logger:  logger.WithComponent("server"),
		policy: contact.Policy{
			BlockInvalid: cfg.Form.BlockInvalid,
			SingleFlight: cfg.Form.SingleFlight,
		},
		flights: &singleflight.Group{},
		limiter: newSessionLimiter(cfg.Server.MaxSessionsPerIP),
		done:    make(chan struct{}),
	}
	s.handler = s.routes(logger)
	return s
}

func (s *Server) routes(logger logging.Logger) http.Handler {
	chain := middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{
		Config: s.config,
		Logger: logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chain.Apply)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get(contact.ContactsPath, s.handleContacts)
	r.Route(view.SubmitPath, func(r chi.Router) {
		r.Get("/", s.handleNewForm)
		r.Post("/", s.handleSubmit)
		r.Post("/cancel", s.handleCancel)
		r.Get("/live", s.handleLive)
	})
	return r
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the address the server is listening on, once started.
func (s *Server) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	return s.addr
}

// Start listens on the configured address and serves until ctx is done or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return cerrors.ServeServiceError("LISTEN", "failed to bind "+s.config.Server.Addr(), err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.serverMutex.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving contact form", "url", fmt.Sprintf("http://%s%s", s.addr, view.SubmitPath))

	if s.config.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s%s", s.addr, view.SubmitPath))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return cerrors.ServeServiceError("SERVE", "server stopped", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		<-errCh
		return err
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.Server.ShutdownTimeout > 0 {
		return s.config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

// Shutdown closes live sessions and gracefully stops the HTTP server.
// It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		close(s.done)

		s.serverMutex.RLock()
		srv := s.httpServer
		s.serverMutex.RUnlock()

		if srv != nil {
			shutdownErr = srv.Shutdown(ctx)
		}

		// Hijacked connections are not tracked by http.Server.
		waited := make(chan struct{})
		go func() {
			s.sessions.Wait()
			close(waited)
		}()
		select {
		case <-waited:
		case <-ctx.Done():
			if shutdownErr == nil {
				shutdownErr = ctx.Err()
			}
		}
	})

	return shutdownErr
}

func (s *Server) openBrowser(url string) {
	time.Sleep(100 * time.Millisecond)

	if err := validation.ValidateURL(url); err != nil {
		s.logger.Warn(context.Background(), err, "Browser open failed due to invalid URL")
		return
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		s.logger.Warn(context.Background(), err, "Failed to open browser")
	}
}
