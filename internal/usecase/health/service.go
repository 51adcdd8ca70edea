package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store StorePinger
	index IndexState
}

// New creates a Service.
func New(store StorePinger, index IndexState) *Service {
	return &Service{store: store, index: index}
}

// Check pings the store and inspects the index cache. A degraded store with a
// loaded index can still serve filtering; details will fail per page.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"store": CheckOK,
		"index": CheckOK,
	}

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	}
	if !s.index.Loaded() {
		checks["index"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
