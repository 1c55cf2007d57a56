package server

import (
	"context"

	"github.com/vanshika/bunqdash/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService reports the graph mirror as unhealthy when it is configured but unreachable.
type GraphHealthService struct {
	Client graph.Client
}

func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
