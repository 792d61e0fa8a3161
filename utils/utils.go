// Package utils provides utility functions for the application.
package utils

import (
	"context"
	"strings"
)

func ToPtr[T any](v T) *T {
	return &v
}

// NilIfEmpty returns nil for blank strings so optional columns store NULL
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Endpoint reads the handling endpoint from the context
func Endpoint(ctx context.Context) string {
	if v, ok := ctx.Value(EndpointKey).(string); ok {
		return v
	}
	return ""
}

// RequestID reads the request id from the context
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}
