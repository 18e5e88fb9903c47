package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// Typed getters
// =============================================================================

// BoolWithDefault returns a getter for a boolean variable. Values that do not
// parse count as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a getter for a string variable.
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint returns a getter for an unsigned variable. Invalid values log a
// warning and yield defaultValue.
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

// Uint64 is Uint for 64 bit values.
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export
// =============================================================================

// EnvVar describes one variable for help output.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every variable with its current value and description.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"IMAGEWRAPPER_DEBUG":        {"IMAGEWRAPPER_DEBUG", LogLevel(), "Show additional debug information (e.g. IMAGEWRAPPER_DEBUG=1)"},
		"IMAGEWRAPPER_HOST":         {"IMAGEWRAPPER_HOST", Host(), "Address for the imagewrapper server (default 127.0.0.1:11500)"},
		"IMAGEWRAPPER_ORIGINS":      {"IMAGEWRAPPER_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"IMAGEWRAPPER_NUM_WORKERS":  {"IMAGEWRAPPER_NUM_WORKERS", NumWorkers(), "Maximum number of images converted in parallel"},
		"IMAGEWRAPPER_MAX_PIXELS":   {"IMAGEWRAPPER_MAX_PIXELS", MaxPixels(), "Largest image decoded, in pixels (0 for no limit)"},
		"IMAGEWRAPPER_MAX_UPLOAD":   {"IMAGEWRAPPER_MAX_UPLOAD", MaxUpload(), "Largest request body accepted by the server, in bytes"},
		"IMAGEWRAPPER_JPEG_QUALITY": {"IMAGEWRAPPER_JPEG_QUALITY", JPEGQuality(), "JPEG quality when none is given (default 85)"},
		"IMAGEWRAPPER_WEBP_QUALITY": {"IMAGEWRAPPER_WEBP_QUALITY", WebPQuality(), "WebP quality when none is given, 100 for lossless (default 90)"},
		"IMAGEWRAPPER_OUTPUT_DIR":   {"IMAGEWRAPPER_OUTPUT_DIR", OutputDir(), "Directory convert writes to when --out is not set"},
		"IMAGEWRAPPER_OVERWRITE":    {"IMAGEWRAPPER_OVERWRITE", Overwrite(), "Let convert replace existing files without --force"},
	}
}

// Values returns every variable's current value as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
