// Package server wires the somnia-jump HTTP surface and its gRPC health
// endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/daemonn69/somnia-jump/internal/platform/httpx"
	"github.com/daemonn69/somnia-jump/internal/platform/timeouts"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/api/rest"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/client"
	"github.com/daemonn69/somnia-jump/internal/services/leaderboard/service"
	"github.com/daemonn69/somnia-jump/internal/services/play"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// LeaderboardHealthService is the gRPC health service name that tracks the
// durable leaderboard backend.
const LeaderboardHealthService = "leaderboard.v1.Leaderboard"

const defaultHealthInterval = 15 * time.Second

// Config holds the listen addresses and leaderboard backend settings.
type Config struct {
	HTTPAddr       string
	HealthAddr     string
	Leaderboard    service.Config
	HealthInterval time.Duration
}

// Server hosts the HTTP API, play sockets and gRPC health.
type Server struct {
	httpListener   net.Listener
	httpServer     *http.Server
	grpcListener   net.Listener
	grpcServer     *grpc.Server
	health         *health.Server
	leaderboard    *service.Service
	play           *play.Handler
	healthInterval time.Duration
	closeOnce      sync.Once

	// baseCtx parents every request so shutdown reaches hijacked play sockets.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// New builds the leaderboard service from cfg and binds both listeners.
func New(cfg Config) (*Server, error) {
	svc, err := service.New(cfg.Leaderboard)
	if err != nil {
		return nil, fmt.Errorf("init leaderboard: %w", err)
	}
	srv, err := NewWithService(cfg, svc)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithService binds both listeners around an existing leaderboard service.
// The server owns svc from here on.
func NewWithService(cfg Config, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("leaderboard service is required")
	}
	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	grpcListener, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		_ = httpListener.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HealthAddr, err)
	}

	playHandler := play.NewHandler(play.Config{
		Sink: client.SinkFunc(func(ctx context.Context, identity string, score int) error {
			_, err := svc.Submit(ctx, identity, float64(score))
			return err
		}),
	})

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(LeaderboardHealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	baseCtx, cancelBase := context.WithCancel(context.Background())
	s := &Server{
		baseCtx:        baseCtx,
		cancelBase:     cancelBase,
		httpListener:   httpListener,
		grpcListener:   grpcListener,
		grpcServer:     grpcServer,
		health:         healthServer,
		leaderboard:    svc,
		play:           playHandler,
		healthInterval: interval,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	return s, nil
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	rest.NewHandler(s.leaderboard).Register(mux)
	s.play.Register(mux)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return httpx.Chain(mux, httpx.RequestID(), httpx.AccessLog(), httpx.RecoverPanic())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.leaderboard.Ping(r.Context()); err != nil {
		status = "degraded"
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"storage": string(s.leaderboard.Kind()),
	})
}

// HTTPAddr returns the bound HTTP address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// HealthAddr returns the bound gRPC health address.
func (s *Server) HealthAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run builds a server and serves it until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the HTTP and gRPC servers until ctx ends or either fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("web server listening at %v", s.httpListener.Addr())
	log.Printf("health server listening at %v", s.grpcListener.Addr())
	log.Printf("leaderboard storage=%s", s.leaderboard.Kind())

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go s.monitorHealth(monitorCtx)

	serveErr := make(chan error, 2)
	go func() {
		err := s.httpServer.Serve(s.httpListener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve http: %w", err)
		}
		serveErr <- err
	}()
	go func() {
		err := s.grpcServer.Serve(s.grpcListener)
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve gRPC: %w", err)
		}
		serveErr <- err
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	s.shutdown()
	return err
}

func (s *Server) shutdown() {
	s.health.Shutdown()
	s.cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown http: %v", err)
	}
	s.grpcServer.GracefulStop()
	s.play.Wait()
}

// monitorHealth mirrors durable backend reachability into gRPC health.
func (s *Server) monitorHealth(ctx context.Context) {
	s.checkHealth(ctx)
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

func (s *Server) checkHealth(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.leaderboard.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("leaderboard health: %v", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(LeaderboardHealthService, status)
}

// Close releases listeners and the leaderboard backend.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		if s.cancelBase != nil {
			s.cancelBase()
		}
		if s.health != nil {
			s.health.Shutdown()
		}
		if s.grpcServer != nil {
			s.grpcServer.Stop()
		}
		if s.httpServer != nil {
			_ = s.httpServer.Close()
		}
		if s.httpListener != nil {
			_ = s.httpListener.Close()
		}
		if s.grpcListener != nil {
			_ = s.grpcListener.Close()
		}
		if s.leaderboard != nil {
			if err := s.leaderboard.Close(); err != nil {
				log.Printf("close leaderboard: %v", err)
			}
		}
	})
}
