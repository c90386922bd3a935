// Package server exposes an auth.Verifier over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Config is the server config.
type Config struct {
	Addr string
	// SweepInterval is how often expired attempts are purged. Zero disables the sweep.
	SweepInterval time.Duration
	Debug         bool
	Logger        log.Interface
}

// Server is the main server struct
type Server struct {
	conf     *Config
	verifier *auth.Verifier
	router   *gin.Engine
	log      log.Interface
}

// NewServer creates a new server
func NewServer(v *auth.Verifier, conf *Config) *Server {
	if conf.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	l := conf.Logger
	if l == nil {
		l = log.Log
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), logger(l))
	router.GET("/_ping", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	AddRoutes(router.Group("/v1"), v)

	return &Server{
		conf:     conf,
		verifier: v,
		router:   router,
		log:      l,
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address, and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.conf.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.log.WithField("addr", ln.Addr().String()).Info("listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	eg.Go(func() error {
		s.sweep(ctx)
		return nil
	})
	return eg.Wait()
}

func (s *Server) sweep(ctx context.Context) {
	if s.conf.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.conf.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.verifier.Store().Sweep(); n > 0 {
				s.log.WithField("attempts", n).Debug("swept expired attempts")
			}
		}
	}
}
