// Package config manages the JSON-backed runtime configuration for the JASS
// query core: index location, default search parameters, and ambient tuning
// knobs shared by cmd/jass and the batch runner.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jass/internal/codec"
)

// Config is the persisted configuration document.
type Config struct {
	// IndexDir is the directory holding the vocabulary, postings, and
	// primary-key files produced by the (external) builder.
	IndexDir string `json:"index_dir"`

	// DefaultCodec names the codec registry entry (codec.ByName) used when a query does
	// not specify -codec explicitly.
	DefaultCodec string `json:"default_codec"`

	// DefaultTopK is the K used when a query does not specify -k.
	DefaultTopK int `json:"default_top_k"`

	// PageShift overrides the accumulator table's page-shift derivation
	// (0 means "let the accumulator choose", see accumulator.New).
	PageShift int `json:"page_shift"`

	// Workers overrides the batch runner's goroutine count (0 means
	// "use runtime.NumCPU()").
	Workers int `json:"workers"`

	// Selector chooses the top-k implementation: "heap" or "beap".
	Selector string `json:"selector"`

	// LogDir overrides errlog's default log directory when non-empty.
	LogDir string `json:"log_dir"`

	// RotationSizeMB overrides errlog's rotation threshold when > 0.
	RotationSizeMB int `json:"rotation_size_mb"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		IndexDir:       "./index",
		DefaultCodec:   "vbyte",
		DefaultTopK:    10,
		PageShift:      0,
		Workers:        0,
		Selector:       "heap",
		LogDir:         "",
		RotationSizeMB: 0,
	}
}

// Manager owns a Config and its backing file, guarding access with an
// RWMutex so the CLI and the batch runner can read it concurrently while an
// operator reload is in flight.
type Manager struct {
	mu         sync.RWMutex
	configPath string
	config     Config
}

// NewManager creates a Manager around configPath without reading it; call
// Load to populate the in-memory config from disk.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		config:     DefaultConfig(),
	}
}

// Load reads the config file at configPath, applying defaults for any
// missing fields. A missing file is not an error: the manager keeps
// DefaultConfig().
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", m.configPath, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Save writes the current in-memory config to configPath as indented JSON.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()
	return m.saveLocked(cfg)
}

func (m *Manager) saveLocked(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(m.configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", m.configPath, err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update applies a partial set of fields, validating each one before it is
// committed. On the first validation error no fields are changed.
func (m *Manager) Update(fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.config
	for key, value := range fields {
		if err := applyUpdate(&cfg, key, value); err != nil {
			return fmt.Errorf("update %q: %w", key, err)
		}
	}
	m.config = cfg
	return m.saveLocked(cfg)
}

// applyUpdate validates and assigns a single configuration field. It is a
// switch rather than reflection so every accepted key has an explicit,
// auditable range check.
func applyUpdate(cfg *Config, key string, value interface{}) error {
	switch key {
	case "index_dir":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string")
		}
		if strings.Contains(s, "..") {
			return fmt.Errorf("index_dir must not contain path traversal segments")
		}
		cfg.IndexDir = s

	case "default_codec":
		s, ok := value.(string)
		if !ok || s == "" {
			return fmt.Errorf("expected non-empty string")
		}
		if _, known := codec.ByName(s); !known {
			return fmt.Errorf("unknown codec %q", s)
		}
		cfg.DefaultCodec = s

	case "default_top_k":
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if n < 1 || n > 10000 {
			return fmt.Errorf("default_top_k must be in [1, 10000], got %d", n)
		}
		cfg.DefaultTopK = n

	case "page_shift":
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if n < 0 || n > 31 {
			return fmt.Errorf("page_shift must be in [0, 31], got %d", n)
		}
		cfg.PageShift = n

	case "workers":
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if n < 0 || n > 4096 {
			return fmt.Errorf("workers must be in [0, 4096], got %d", n)
		}
		cfg.Workers = n

	case "selector":
		s, ok := value.(string)
		if !ok || (s != "heap" && s != "beap") {
			return fmt.Errorf("selector must be \"heap\" or \"beap\"")
		}
		cfg.Selector = s

	case "log_dir":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string")
		}
		if strings.Contains(s, "..") {
			return fmt.Errorf("log_dir must not contain path traversal segments")
		}
		cfg.LogDir = s

	case "rotation_size_mb":
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if n < 0 || n > 100000 {
			return fmt.Errorf("rotation_size_mb must be in [0, 100000], got %d", n)
		}
		cfg.RotationSizeMB = n

	default:
		return fmt.Errorf("unknown config key")
	}
	return nil
}

// toInt accepts the numeric shapes encoding/json produces when a map is
// decoded from arbitrary JSON (float64) as well as a plain int, which
// callers constructing fields programmatically are likely to pass.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number")
	}
}
