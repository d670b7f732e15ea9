package ports

import "context"

// HealthChecker verifies connectivity of a backing service.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}
