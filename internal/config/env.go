// Package config provides shared configuration utilities.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named). Variables already set in the environment win. A missing file
// is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvFloat parses key as a float, returning fallback when it is unset or
// malformed.
func GetEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn("ignoring malformed float", "key", key, "value", value)
		return fallback
	}
	return f
}

// GetEnvInt parses key as an integer, returning fallback when it is unset
// or malformed.
func GetEnvInt(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Warn("ignoring malformed integer", "key", key, "value", value)
		return fallback
	}
	return n
}

// GetEnvBool parses key as a boolean, returning fallback when it is unset
// or malformed.
func GetEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("ignoring malformed boolean", "key", key, "value", value)
		return fallback
	}
	return b
}

// NewLogger builds the process logger. The level comes from
// MARBLES_LOG_LEVEL (debug, info, warn, error); info when unset.
func NewLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(GetEnv("MARBLES_LOG_LEVEL", "info"))
	if err != nil {
		logger.Warn("unknown log level, using info", "err", err)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	log.SetDefault(logger)
	return logger
}
