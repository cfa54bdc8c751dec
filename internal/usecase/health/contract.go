package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// NERChecker checks entity recognizer availability.
type NERChecker interface {
	HealthCheck(ctx context.Context) error
}
