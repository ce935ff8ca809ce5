package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port         string   // HTTP listen port
	StaticDir    string   // directory served for unmatched GETs
	MaxBodyBytes int64    // cap for JSON request bodies
	Outputs      []string // enabled sinks: log, kafka, postgres
	PGDSN        string   // Postgres DSN when the postgres sink is enabled
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string { return ":" + c.Port }

func getOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getStringSlice(k, def string) []string {
	v := os.Getenv(k)
	if v == "" {
		v = def
	}
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func Load() Config {
	return Config{
		Port:         getOr("PORT", "4173"),
		StaticDir:    getOr("STATIC_DIR", "./dist"),
		MaxBodyBytes: getInt64("MAX_BODY_BYTES", 1<<20), // 1 MiB default
		Outputs:      getStringSlice("OUTPUTS", "log"),
		PGDSN:        getOr("PG_DSN", ""),
	}
}
