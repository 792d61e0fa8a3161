package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "valid", input: "2025-03-15", expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "leap day", input: "2024-02-29", expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "impossible day", input: "2025-02-30", expectError: true},
		{name: "month 13", input: "2025-13-01", expectError: true},
		{name: "missing padding", input: "2025-3-5", expectError: true},
		{name: "with time", input: "2025-03-15T00:00:00Z", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got))
			assert.Equal(t, tt.input, FormatDate(got))
		})
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2025)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, NilIfEmpty(""))
	assert.Nil(t, NilIfEmpty("   "))
	require.NotNil(t, NilIfEmpty(" PT Maju "))
	assert.Equal(t, "PT Maju", *NilIfEmpty(" PT Maju "))
	assert.Equal(t, "", Deref(nil))
}

func TestRequestContextValues(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "", Endpoint(context.Background()))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	ctx = context.WithValue(ctx, EndpointKey, "/api/v1/bast/generate")
	assert.Equal(t, "req-7", RequestID(ctx))
	assert.Equal(t, "/api/v1/bast/generate", Endpoint(ctx))
}
