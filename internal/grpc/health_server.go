// Package grpc exposes the forecast worker's liveness over the standard
// grpc.health.v1 protocol and provides the matching client probe.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/utils"
)

// ForecastServiceName is the health service name reported by workers
const ForecastServiceName = "finsight.forecast.v1.Forecaster"

// CheckFunc reports whether the worker can take jobs
type CheckFunc func() bool

// HealthServer serves grpc.health.v1 for a forecast worker. The status of
// ForecastServiceName follows CheckFunc, re-evaluated every interval.
type HealthServer struct {
	address    string
	check      CheckFunc
	interval   time.Duration
	logger     *logging.Logger
	grpcServer *grpc.Server
	health     *health.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewHealthServer creates a health server listening on address
func NewHealthServer(address string, check CheckFunc, logger *logging.Logger) *HealthServer {
	return &HealthServer{
		address:  address,
		check:    check,
		interval: utils.GRPCHealthCheckInterval,
		logger:   logger,
		health:   health.NewServer(),
	}
}

// Listen binds the listener and registers services. It is separate from
// Serve so callers can learn the bound address before serving.
func (s *HealthServer) Listen() (net.Addr, error) {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.updateStatus()
	return listener.Addr(), nil
}

// Serve serves until ctx is cancelled, then stops gracefully
func (s *HealthServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
		listener = s.listener
	}

	s.logger.Info("gRPC health server starting", "address", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(listener)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case err := <-errCh:
			return fmt.Errorf("gRPC server error: %w", err)
		case <-ticker.C:
			s.updateStatus()
		}
	}
}

// updateStatus publishes the current check result
func (s *HealthServer) updateStatus() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.check != nil && !s.check() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ForecastServiceName, status)
	s.health.SetServingStatus("", status)
}

// Stop marks every service NOT_SERVING and stops the server gracefully
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	if s.grpcServer != nil {
		s.logger.Info("Stopping gRPC health server")
		s.grpcServer.GracefulStop()
	}
}

// CheckHealth probes the forecast service on a worker's health endpoint
func CheckHealth(ctx context.Context, address string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("failed to create gRPC connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(ctx, utils.GRPCDialTimeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ForecastServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check of %s failed: %w", address, err)
	}
	return resp.GetStatus(), nil
}
