package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search works with reduced understanding.
	Degraded Status = "degraded"
	// Unhealthy means search cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentNER      = "ner"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	ner     NERChecker
	timeout time.Duration
}

// New creates a Service. ner can be nil when no recognizer is configured.
func New(db DBPinger, ner NERChecker) *Service {
	return &Service{db: db, ner: ner, timeout: DefaultCheckTimeout}
}

// Check runs health checks against all components. A recognizer failure only
// degrades the service since the fallback lexicon keeps search working.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.check(ctx, s.db.Ping); err != nil {
		checks[ComponentDatabase] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentDatabase] = CheckOK
	}

	if s.ner != nil {
		if err := s.check(ctx, s.ner.HealthCheck); err != nil {
			checks[ComponentNER] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[ComponentNER] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) check(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
