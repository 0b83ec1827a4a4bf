package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"user-api-service/internal/config"
)

// ErrPortInUse is returned when a listener cannot bind because the port is taken.
var ErrPortInUse = errors.New("port already in use")

// Server runs the plaintext listener and, when key material is configured, the TLS listener.
type Server struct {
	HTTP  *http.Server
	HTTPS *http.Server

	certFile        string
	keyFile         string
	shutdownTimeout time.Duration
	log             *zap.Logger
}

// New builds the listeners for handler from cfg.
func New(cfg *config.Config, handler http.Handler, l *zap.Logger) *Server {
	s := &Server{
		HTTP:            newHTTPServer(":"+cfg.App.HTTPPort, handler),
		certFile:        cfg.App.TLSCertFile,
		keyFile:         cfg.App.TLSKeyFile,
		shutdownTimeout: cfg.ShutdownTimeout(),
		log:             l,
	}
	if cfg.TLSEnabled() {
		s.HTTPS = newHTTPServer(":"+cfg.App.HTTPSPort, handler)
	}
	return s
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves until ctx is canceled or a listener fails, then shuts every
// listener down within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.serve(gctx, "http", s.HTTP, func(ln net.Listener) error {
			return s.HTTP.Serve(ln)
		})
	})

	if s.HTTPS != nil {
		g.Go(func() error {
			return s.serve(gctx, "https", s.HTTPS, func(ln net.Listener) error {
				return s.HTTPS.ServeTLS(ln, s.certFile, s.keyFile)
			})
		})
	} else {
		s.log.Info("https listener disabled, TLS_CERT_FILE and TLS_KEY_FILE not set")
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

func (s *Server) serve(ctx context.Context, name string, srv *http.Server, serve func(net.Listener) error) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			s.log.Error("port already in use", zap.String("listener", name), zap.String("address", srv.Addr))
			return fmt.Errorf("%s listener on %s: %w", name, srv.Addr, ErrPortInUse)
		}
		s.log.Error("failed to listen", zap.String("listener", name), zap.String("address", srv.Addr), zap.Error(err))
		return fmt.Errorf("%s listener on %s: %w", name, srv.Addr, err)
	}

	s.log.Info("listener running", zap.String("listener", name), zap.String("address", ln.Addr().String()))

	if err := serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("listener failed", zap.String("listener", name), zap.Error(err))
		return fmt.Errorf("%s listener: %w", name, err)
	}
	return nil
}

// Shutdown gracefully stops every listener.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	for name, srv := range map[string]*http.Server{"http": s.HTTP, "https": s.HTTPS} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
