// Package envconfig reads the IMAGEWRAPPER_* environment variables used by
// the command line tool and the HTTP server. The core packages never read
// the environment; callers pass these values in as options.
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const defaultPort = "11500"

// Host returns the scheme and address the server listens on.
// Configurable via IMAGEWRAPPER_HOST. Default: http://127.0.0.1:11500
func Host() *url.URL {
	port := defaultPort

	s := strings.TrimSpace(Var("IMAGEWRAPPER_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		port = "80"
	case scheme == "https":
		port = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, p, err := net.SplitHostPort(hostport)
	if err != nil {
		host, p = "127.0.0.1", port
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(p, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", p, "default", port)
		p = port
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, p),
		Path:   path,
	}
}

// AllowedOrigins returns the CORS origins the server accepts.
// Configurable via IMAGEWRAPPER_ORIGINS (comma separated); localhost origins
// are always included.
func AllowedOrigins() (origins []string) {
	if s := Var("IMAGEWRAPPER_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return append(origins, "file://*")
}

// LogLevel returns the log level.
// Configurable via IMAGEWRAPPER_DEBUG: 0/false = INFO (default),
// 1/true = DEBUG, 2 = TRACE.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("IMAGEWRAPPER_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var returns an environment variable with surrounding quotes and
// whitespace removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
