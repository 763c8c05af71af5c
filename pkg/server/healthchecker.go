package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthReporter is a HealthChecker that can also describe its state.
type HealthReporter interface {
	HealthChecker
	HealthDetails(ctx context.Context) map[string]any
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}
