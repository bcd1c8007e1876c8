package config

import (
	"io"
	"time"
)

// Config is the read-only view of runtime configuration. Missing keys read as
// the zero value of the requested type.
type Config interface {
	io.Closer

	// GetSecond reads an integer key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer key as a number of minutes.
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint64(key string) uint64
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetArray reads a comma separated list, trimming entries and dropping empty ones.
	GetArray(key string) []string
}
