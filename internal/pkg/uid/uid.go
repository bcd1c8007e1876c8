// Package uid generates identifiers.
//
// Numeric IDs (snowflake) are used as database primary keys, string IDs
// (UUIDv7) for correlation and flow identifiers, and ObjectIDs for opaque
// secrets handed to users such as password reset tokens.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
