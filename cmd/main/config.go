package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"

	"github.com/halvdan/onomast/pkg/namegen"
)

// ServerConfig holds the configuration for the HTTP server and its storage paths.
type ServerConfig struct {
	ApiAddr      string `json:"api_addr"`
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	PatternDir   string `json:"pattern_dir"`
	DatabasePath string `json:"database_path"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server *ServerConfig   `json:"server_config"`
	Engine *namegen.Config `json:"engine_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:      ":7980",
		LogLevel:     "info",
		DataDir:      "./data",
		PatternDir:   "./data/patterns",
		DatabasePath: "./data/onomast.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
	}
}

// DefaultConfig creates a full configuration with default values.
func DefaultConfig() *Config {
	engine := namegen.DefaultConfig()
	return &Config{
		Server: DefaultServerConfig(),
		Engine: &engine,
	}
}

// envConfig is the bootstrap environment overlay. Values set here win over
// the config file; everything else is managed through the file and the API.
type envConfig struct {
	ConfigPath   string `env:"ONOMAST_CONFIG" envDefault:"./config.json"`
	ApiAddr      string `env:"ONOMAST_API_ADDR"`
	LogLevel     string `env:"ONOMAST_LOG_LEVEL"`
	DataDir      string `env:"ONOMAST_DATA_DIR"`
	PatternDir   string `env:"ONOMAST_PATTERN_DIR"`
	DatabasePath string `env:"ONOMAST_DB_PATH"`
}

// loadEnvConfig reads the bootstrap overlay, loading a .env file first when
// one exists.
func loadEnvConfig() (envConfig, error) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()
	return env.ParseAs[envConfig]()
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		// For other errors (e.g., permission denied), return the error.
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Sections removed from the file by hand come back as nil; refill them
	// so nothing downstream has to nil-check.
	if config.Server == nil {
		config.Server = DefaultServerConfig()
	}
	if config.Engine == nil {
		engine := namegen.DefaultConfig()
		config.Engine = &engine
	}

	return config, nil
}

// ConfigManager handles thread-safe access to the configuration and pushes
// engine updates to the generator it manages.
type ConfigManager struct {
	config     *Config
	mu         sync.RWMutex
	configPath string
	logger     *slog.Logger
	gen        *namegen.Generator
}

// NewConfigManager loads the config and initializes the manager.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return &ConfigManager{
		config:     cfg,
		configPath: path,
		// Log to stdout before the application-specific logger is set.
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
	}, nil
}

// SetLogger sets the logger. That's about it.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	cm.logger = logger
}

// SetGenerator registers the generator to receive engine config updates and
// immediately applies the current configuration to it.
func (cm *ConfigManager) SetGenerator(gen *namegen.Generator) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.gen = gen
	if gen != nil {
		gen.Configure(*cm.config.Engine)
	}
}

// ApplyEnv overlays non-empty bootstrap environment values onto the loaded
// configuration. Only applied at startup, before anything reads the config.
func (cm *ConfigManager) ApplyEnv(e envConfig) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if e.ApiAddr != "" {
		cm.config.Server.ApiAddr = e.ApiAddr
	}
	if e.LogLevel != "" {
		cm.config.Server.LogLevel = e.LogLevel
	}
	if e.DataDir != "" {
		cm.config.Server.DataDir = e.DataDir
	}
	if e.PatternDir != "" {
		cm.config.Server.PatternDir = e.PatternDir
	}
	if e.DatabasePath != "" {
		cm.config.Server.DatabasePath = e.DatabasePath
	}
}

// Get returns a thread-safe copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	// Copy the sections too, so callers cannot reach the internal state
	// through the pointers.
	server := *cm.config.Server
	engine := *cm.config.Engine
	return Config{Server: &server, Engine: &engine}
}

// Update replaces the configuration, applies the engine section to the
// generator, and persists the result to disk atomically.
func (cm *ConfigManager) Update(newConfig Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if newConfig.Server == nil {
		newConfig.Server = DefaultServerConfig()
	}
	if newConfig.Engine == nil {
		engine := namegen.DefaultConfig()
		newConfig.Engine = &engine
	}

	if cm.gen != nil {
		cm.gen.Configure(*newConfig.Engine)
		// Persist what the engine actually runs with: Configure fills
		// unusable fields with defaults.
		applied := cm.gen.Config()
		newConfig.Engine = &applied
	}

	*cm.config = newConfig

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
