package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	layoutModeKey contextKey = "layout_mode"
)

// WithRunID annotates context with the sync run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sync run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLayoutMode annotates context with the active layout mode (folder/library).
func WithLayoutMode(ctx context.Context, mode string) context.Context {
	if mode == "" {
		return ctx
	}
	return context.WithValue(ctx, layoutModeKey, mode)
}

// LayoutModeFromContext returns the active layout mode if present.
func LayoutModeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(layoutModeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
