package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager handles configuration loading and hot-reload.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
	cfgFile   string
	logger    *slog.Logger
}

// NewManager creates a config manager and loads configuration from the
// given file, the working directory, or the promptvault home directory.
func NewManager(cfgFile string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfgFile: cfgFile,
		logger:  logger,
	}
	if err := m.initViper(); err != nil {
		return nil, err
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewFromConfig wraps an already-built Config in a Manager, bypassing
// viper entirely. Used in tests.
func NewFromConfig(cfg *Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{config: cfg, logger: logger}
}

func (m *Manager) initViper() error {
	defaults := DefaultConfig()
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("auth.jwt_secret", defaults.Auth.JWTSecret)
	viper.SetDefault("auth.session_ttl", defaults.Auth.SessionTTL)
	viper.SetDefault("defaults.provider", defaults.Defaults.Provider)
	viper.SetDefault("defaults.days_in_month", defaults.Defaults.DaysInMonth)

	viper.SetEnvPrefix("PROMPTVAULT")
	viper.AutomaticEnv()

	if m.cfgFile != "" {
		viper.SetConfigFile(m.cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".promptvault"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
		m.logger.Debug("no config file found, using defaults")
	} else {
		m.logger.Info("loaded config file", "path", viper.ConfigFileUsed())
	}
	return nil
}

func (m *Manager) load() error {
	cfg := DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnChange registers a callback invoked after each successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig starts watching the config file for changes.
func (m *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		m.logger.Info("config file changed, reloading", "file", e.Name)
		if err := m.load(); err != nil {
			m.logger.Error("failed to reload config", "error", err)
			return
		}
		m.mu.RLock()
		cfg := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${VAR} references against the environment.
// Unset variables resolve to the empty string.
func ResolveEnvVars(value string) string {
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// WriteDefault writes a commented default config file at path, creating
// parent directories as needed. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	header := fmt.Sprintf("# promptvault configuration\n# generated %s\n# values of the form ${VAR} are resolved from the environment at use time\n\n",
		time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
