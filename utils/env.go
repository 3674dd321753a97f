package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

//
// ===========================================================
//  ENV UTILITIES
// ===========================================================
//

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvDuration parses values like "24h" or "15m". Invalid values fall back
// to def with a warning.
func EnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("warning: invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func EnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}
