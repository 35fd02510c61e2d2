package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = DEFAULT_READ_TIMEOUT
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// Server wraps http.Server with signal driven graceful shutdown and shutdown hooks.
type Server struct {
	*http.Server

	listener     net.Listener
	signalChan   chan os.Signal
	shutdownChan chan struct{}
	shutdownOnce sync.Once

	mu    sync.Mutex
	hooks []func(context.Context)
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	if readTimeout <= 0 {
		readTimeout = DEFAULT_READ_TIMEOUT
	}
	if writeTimeout <= 0 {
		writeTimeout = DEFAULT_WRITE_TIMEOUT
	}
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// OnShutdown registers fn to run after the HTTP server stops accepting requests.
// Hooks run in reverse registration order.
func (srv *Server) OnShutdown(fn func(context.Context)) {
	srv.mu.Lock()
	srv.hooks = append(srv.hooks, fn)
	srv.mu.Unlock()
}

// ListenAndServe starts serving on tcp and blocks until a graceful shutdown finished.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	srv.listener = ln

	go srv.handleSignals()
	err = srv.Server.Serve(srv.listener)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-srv.shutdownChan
	return nil
}

func (srv *Server) handleSignals() {
	signal.Notify(srv.signalChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-srv.signalChan
	logInfof("received %s, graceful shutting down HTTP server", sig)
	srv.Stop()
}

// Stop shuts the HTTP server down and runs the shutdown hooks once.
func (srv *Server) Stop() {
	srv.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), DEFAULT_SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logInfof("HTTP server shutdown error: %v", err)
		} else {
			logInfof("HTTP server shutdown success")
		}
		srv.mu.Lock()
		hooks := srv.hooks
		srv.mu.Unlock()
		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i](ctx)
		}
		close(srv.shutdownChan)
	})
}

func logInfof(format string, args ...interface{}) {
	if Sugar != nil {
		Sugar.Infof(format, args...)
	}
}
