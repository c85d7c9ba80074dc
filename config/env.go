package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override scenario fields.
const (
	EnvSeed        = "ADVERTSIM_SEED"
	EnvLogLevel    = "ADVERTSIM_LOG_LEVEL"
	EnvDuration    = "ADVERTSIM_DURATION"
	EnvMonitorPort = "ADVERTSIM_MONITOR_PORT"
)

// LoadEnv loads the given dotenv files into the process environment.
// Variables that are already set win, and missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}

		return fmt.Errorf("load %s: %w", f, err)
	}

	return nil
}

// ApplyEnv overrides scenario fields from ADVERTSIM_* variables.
func (s *Scenario) ApplyEnv() error {
	var errs []error

	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSeed, err))
		} else {
			s.Seed = seed
		}
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = v
	}

	if v, ok := os.LookupEnv(EnvDuration); ok {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDuration, err))
		} else {
			s.Duration = d
		}
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMonitorPort, err))
		} else {
			s.Monitor.Enabled = true
			s.Monitor.Port = port
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return s.Validate()
}
