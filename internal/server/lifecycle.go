// Package server runs the simulation's long-lived services: the tick
// driver, the autosave loop, and the storage health check. Services start in
// registration order, run until a signal or a failure, and stop in reverse
// order.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one long-running component under lifecycle management.
type Service interface {
	// Start runs the service and blocks until Stop is called or the service
	// fails.
	Start() error
	// Stop asks the service to wind down; Start returns shortly after.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts a set of named services and shuts them down together.
// Startup follows registration order; shutdown reverses it, so a service may
// depend on anything registered before it.
type Lifecycle struct {
	logger   *zap.Logger
	services []registration
	mu       sync.Mutex
}

type registration struct {
	name    string
	service Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named service. Registration order is start order.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, registration{name: name, service: svc})
}

// Run starts every registered service and blocks until SIGINT/SIGTERM, a
// service failure, or ctx cancellation, then stops them in reverse order.
//
// Postcondition: All services are stopped when this method returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(l.services))
	for _, reg := range l.services {
		reg := reg
		go func() {
			l.logger.Info("starting service",
				zap.String("service", reg.name),
			)
			svcStart := time.Now()
			if err := reg.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", reg.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				errCh <- fmt.Errorf("service %s: %w", reg.name, err)
				cancel()
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err := <-errCh:
		l.logger.Error("service error, shutting down",
			zap.Error(err),
		)
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.shutdown()

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return nil
}

func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		reg := l.services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service",
			zap.String("service", reg.name),
		)
		reg.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", reg.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
