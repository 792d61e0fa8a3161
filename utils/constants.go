package utils

import (
	"time"
)

// Request context keys shared by handlers and flows
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	EndpointKey  contextKey = "endpoint"
)

// Request handling constants
const (
	// RequestTimeout bounds every handler's database work
	RequestTimeout = 30 * time.Second

	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Document years accepted for issuing and filtering; every year renders as four digits
const (
	MinDocumentYear = 1900
	MaxDocumentYear = 9999
)

// Listing constants
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// IdempotencyKeyHeader carries the client-chosen key for replay-safe generation
const IdempotencyKeyHeader = "Idempotency-Key"

// OperatorLocalsKey is the fiber locals key holding the upstream operator identity
const OperatorLocalsKey = "operator_id"
