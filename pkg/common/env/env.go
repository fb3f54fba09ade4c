package env

import (
	"os"
	"strconv"
)

// GetString reads an environment variable, falling back to a default when the
// variable is unset or empty.
func GetString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

// GetInt reads an integer environment variable. Unparseable values fall back
// to the default rather than failing startup.
func GetInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
