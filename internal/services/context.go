package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	cycleKey   contextKey = "cycle"
	stageKey   contextKey = "stage"
	airportKey contextKey = "airport"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithCycle annotates context with the cycle being produced.
func WithCycle(ctx context.Context, cycle string) context.Context {
	if cycle == "" {
		return ctx
	}
	return context.WithValue(ctx, cycleKey, cycle)
}

// CycleFromContext returns the cycle if present.
func CycleFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, cycleKey)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithAirport annotates context with the airport a unit of work targets.
func WithAirport(ctx context.Context, airport string) context.Context {
	if airport == "" {
		return ctx
	}
	return context.WithValue(ctx, airportKey, airport)
}

// AirportFromContext returns the airport identifier if present.
func AirportFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, airportKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
