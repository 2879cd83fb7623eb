package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Engine parameters, all in whole minutes
	if v := envMinutes("BIODAEMON_LIMIT_ROUND"); v > 0 {
		cfg.Engine.LimitRound = v
	}

	if v := envMinutes("BIODAEMON_LIMIT_DEATH"); v > 0 {
		cfg.Engine.LimitDeath = v
	}

	if v := envMinutes("BIODAEMON_MIN_BREAK"); v > 0 {
		cfg.Engine.MinBreak = v
	}

	if v := envMinutes("BIODAEMON_FULL_RESET"); v > 0 {
		cfg.Engine.FullReset = v
	}

	// Monitor configuration
	if tick := os.Getenv("BIODAEMON_TICK_INTERVAL"); tick != "" {
		if seconds, err := strconv.Atoi(tick); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Monitor.MinTickInterval && interval <= cfg.Monitor.MaxTickInterval {
				cfg.Monitor.TickInterval = interval
			}
		}
	}

	// Database configuration
	if dbPath := os.Getenv("BIODAEMON_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Daemon configuration
	if pidFile := os.Getenv("BIODAEMON_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("BIODAEMON_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// Notify configuration
	if notify := os.Getenv("BIODAEMON_NOTIFY"); notify != "" {
		if val, err := strconv.ParseBool(notify); err == nil {
			cfg.Notify.Enabled = val
		}
	}

	if petName := os.Getenv("BIODAEMON_PET_NAME"); petName != "" {
		cfg.Notify.PetName = petName
	}

	// Web configuration
	if webHost := os.Getenv("BIODAEMON_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("BIODAEMON_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// envMinutes parses an environment variable holding a whole number of
// minutes; returns 0 when unset or invalid.
func envMinutes(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
