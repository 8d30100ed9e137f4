// Package handler reports gateway readiness through the standard grpc.health.v1 service.
package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is implemented by the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// ServiceName is the health service entry reported alongside the overall ("") status.
const ServiceName = "cognisecure.assistant.v1.AssistantService"

// Checker checks the database and the policy engine. Nil dependencies are skipped.
type Checker struct {
	pinger Pinger
	policy PolicyChecker
}

// NewChecker returns a Checker.
func NewChecker(pinger Pinger, policy PolicyChecker) *Checker {
	return &Checker{pinger: pinger, policy: policy}
}

// Check returns the first dependency failure, or nil when everything is reachable.
func (c *Checker) Check(ctx context.Context) error {
	if c.pinger != nil {
		if err := c.pinger.PingContext(ctx); err != nil {
			return err
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Status maps Check to a serving status.
func (c *Checker) Status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if c.Check(ctx) != nil {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// Watch runs Check every interval and publishes the result on srv until ctx is done.
func (c *Checker) Watch(ctx context.Context, srv *health.Server, interval time.Duration, log zerolog.Logger) {
	update := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		st := healthpb.HealthCheckResponse_SERVING
		if err := c.Check(checkCtx); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		srv.SetServingStatus("", st)
		srv.SetServingStatus(ServiceName, st)
	}
	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			srv.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
