package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Engine holds the health simulation parameters
	Engine EngineConfig

	// Monitor configuration
	Monitor MonitorConfig

	// Database configuration
	Database DatabaseConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Notify configuration
	Notify NotifyConfig

	// Web server configuration
	Web WebConfig
}

// EngineConfig holds the four health simulation parameters, immutable for
// the process lifetime once the daemon starts.
type EngineConfig struct {
	LimitRound time.Duration // Continuous work before the avatar starts degrading
	LimitDeath time.Duration // Continuous work at which health runs out
	MinBreak   time.Duration // Breaks shorter than this heal nothing
	FullReset  time.Duration // Breaks at least this long fully restore health
}

// MonitorConfig holds the daemon loop configuration
type MonitorConfig struct {
	TickInterval    time.Duration // How often to poll lock state and apply work damage
	MinTickInterval time.Duration // Minimum allowed tick interval
	MaxTickInterval time.Duration // Maximum allowed tick interval
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Path daemon logs are redirected to
}

// NotifyConfig holds desktop notification configuration
type NotifyConfig struct {
	Enabled bool   // Whether to send desktop notifications
	PetName string // Name of the avatar used in notification text
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			LimitRound: 45 * time.Minute,
			LimitDeath: 80 * time.Minute,
			MinBreak:   2 * time.Minute,
			FullReset:  15 * time.Minute,
		},
		Monitor: MonitorConfig{
			TickInterval:    time.Minute, // Whole-minute damage granularity
			MinTickInterval: time.Second,
			MaxTickInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/biodaemon/biodaemon.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/biodaemon-%d.pid", os.Getuid()),
			LogFile: "/tmp/biodaemon.log",
		},
		Notify: NotifyConfig{
			Enabled: true,
			PetName: "Pixel",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(), // Default port based on user UID
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate engine thresholds
	if c.Engine.LimitRound <= 0 {
		return fmt.Errorf("round limit must be positive, got %v", c.Engine.LimitRound)
	}

	if c.Engine.LimitDeath <= c.Engine.LimitRound {
		return fmt.Errorf("death limit (%v) must be greater than round limit (%v)",
			c.Engine.LimitDeath, c.Engine.LimitRound)
	}

	if c.Engine.MinBreak <= 0 {
		return fmt.Errorf("minimum break must be positive, got %v", c.Engine.MinBreak)
	}

	if c.Engine.FullReset <= c.Engine.MinBreak {
		return fmt.Errorf("full reset break (%v) must be greater than minimum break (%v)",
			c.Engine.FullReset, c.Engine.MinBreak)
	}

	// Validate monitor intervals
	if c.Monitor.TickInterval < c.Monitor.MinTickInterval {
		return fmt.Errorf("tick interval (%v) cannot be less than minimum (%v)",
			c.Monitor.TickInterval, c.Monitor.MinTickInterval)
	}

	if c.Monitor.TickInterval > c.Monitor.MaxTickInterval {
		return fmt.Errorf("tick interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.TickInterval, c.Monitor.MaxTickInterval)
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetTickInterval sets the tick interval with validation
func (c *Config) SetTickInterval(interval time.Duration) error {
	if interval < c.Monitor.MinTickInterval {
		return fmt.Errorf("tick interval cannot be less than %v", c.Monitor.MinTickInterval)
	}
	if interval > c.Monitor.MaxTickInterval {
		return fmt.Errorf("tick interval cannot be greater than %v", c.Monitor.MaxTickInterval)
	}
	c.Monitor.TickInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// LimitRoundMinutes returns the round limit in whole minutes
func (c *Config) LimitRoundMinutes() int {
	return int(c.Engine.LimitRound.Minutes())
}

// LimitDeathMinutes returns the death limit in whole minutes
func (c *Config) LimitDeathMinutes() int {
	return int(c.Engine.LimitDeath.Minutes())
}

// MinBreakMinutes returns the minimum break in whole minutes
func (c *Config) MinBreakMinutes() int {
	return int(c.Engine.MinBreak.Minutes())
}

// FullResetMinutes returns the full reset break in whole minutes
func (c *Config) FullResetMinutes() int {
	return int(c.Engine.FullReset.Minutes())
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Engine:
    Round Limit: %v
    Death Limit: %v
    Min Break: %v
    Full Reset: %v
  Monitor:
    Tick Interval: %v
  Database:
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Notify:
    Enabled: %v
    Pet Name: %s
  Web:
    Host: %s
    Port: %d`,
		c.Engine.LimitRound,
		c.Engine.LimitDeath,
		c.Engine.MinBreak,
		c.Engine.FullReset,
		c.Monitor.TickInterval,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Notify.Enabled,
		c.Notify.PetName,
		c.Web.Host,
		c.Web.Port,
	)
}
