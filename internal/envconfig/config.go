// Package envconfig reads chainnet defaults from the environment.
//
// Every getter reads the environment on each call, so tests and callers
// may change variables at runtime. Command-line flags take precedence
// over these values.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/chainnet/internal/fixed"
)

// DefaultMaxChunk is the default number of scalars per weight chunk.
const DefaultMaxChunk = 512

var (
	// MaxChunk is the largest weight chunk emitted by a plan.
	// Configurable via CHAINNET_MAX_CHUNK.
	MaxChunk = Uint("CHAINNET_MAX_CHUNK", DefaultMaxChunk)

	// Workers bounds concurrent model builds in batch prediction.
	// Configurable via CHAINNET_WORKERS; 0 uses GOMAXPROCS.
	Workers = Uint("CHAINNET_WORKERS", 0)
)

// Scale returns the fixed-point scale for weights and layer fields.
// Configurable via CHAINNET_SCALE ("q32" or "e18"). Default: q32.
func Scale() fixed.Scale {
	s := Var("CHAINNET_SCALE")
	scale, err := fixed.ParseScale(s)
	if err != nil {
		slog.Warn("invalid environment variable, using default", "key", "CHAINNET_SCALE", "value", s, "default", fixed.Q32)
		return fixed.Q32
	}
	return scale
}

// LogLevel returns the log level.
// Configurable via CHAINNET_DEBUG.
// Values: 0/false = INFO (default), 1/true = DEBUG, 2 = TRACE.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("CHAINNET_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Uint returns a getter for a uint with a default value. Unparseable
// values log a warning and fall back to the default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar describes one environment variable and its current value.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every chainnet variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"CHAINNET_DEBUG":     {"CHAINNET_DEBUG", LogLevel(), "Show additional debug information (e.g. CHAINNET_DEBUG=1)"},
		"CHAINNET_MAX_CHUNK": {"CHAINNET_MAX_CHUNK", MaxChunk(), "Maximum scalars per weight chunk (default 512)"},
		"CHAINNET_SCALE":     {"CHAINNET_SCALE", Scale(), "Fixed-point scale, q32 or e18 (default q32)"},
		"CHAINNET_WORKERS":   {"CHAINNET_WORKERS", Workers(), "Concurrent models for batch prediction (default GOMAXPROCS)"},
	}
}

// Values returns every chainnet variable's current value as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Var returns an environment variable stripped of surrounding whitespace
// and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
