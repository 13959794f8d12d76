package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	View      ViewConfig      `json:"view"`
	Thumbnail ThumbnailConfig `json:"thumbnail"`
	Watcher   WatcherConfig   `json:"watcher"`
}

// ViewConfig controls directory listing and rendering behavior
type ViewConfig struct {
	ShowHidden           bool   `json:"showHidden"`
	DefaultSort          string `json:"defaultSort"` // "name" | "date" | "size" | "type"
	SortAscending        bool   `json:"sortAscending"`
	BatchSize            int    `json:"batchSize"`            // Items painted per frame/reveal step
	VirtualizeThreshold  int    `json:"virtualizeThreshold"`  // Switch to viewport-driven rendering at this count
	HugeDirectoryWarning int    `json:"hugeDirectoryWarning"` // Raise a performance notice above this count
	StreamChunkSize      int    `json:"streamChunkSize"`      // Provider progress batch size
	Locale               string `json:"locale"`               // BCP 47 tag for name collation, e.g. "en"
}

// ThumbnailConfig controls the thumbnail pipeline
type ThumbnailConfig struct {
	Concurrency         int      `json:"concurrency"`   // Max simultaneously generating thumbnails
	CacheCapacity       int      `json:"cacheCapacity"` // Max cached representations
	MaxPixels           int      `json:"maxPixels"`     // Max thumbnail dimension
	MaxImageBytes       int64    `json:"maxImageBytes"` // Larger images fall back to an icon
	VideoCaptureTimeout Duration `json:"videoCaptureTimeout"`
	FFmpegPath          string   `json:"ffmpegPath"`
}

// WatcherConfig controls directory change watching
type WatcherConfig struct {
	Enabled  bool     `json:"enabled"`
	Debounce Duration `json:"debounce"` // Coalesce change bursts into one refresh
}

// Duration wraps time.Duration so it round-trips through JSON as a string
// like "2s" or "250ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Manager owns the loaded configuration and serializes access to it
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error
}

// NewManager creates an empty config manager; call Load before use
func NewManager() *Manager {
	return &Manager{}
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		View: ViewConfig{
			ShowHidden:           false,
			DefaultSort:          "name",
			SortAscending:        true,
			BatchSize:            200,
			VirtualizeThreshold:  2000,
			HugeDirectoryWarning: 50000,
			StreamChunkSize:      500,
			Locale:               "en",
		},
		Thumbnail: ThumbnailConfig{
			Concurrency:         4,
			CacheCapacity:       500,
			MaxPixels:           128,
			MaxImageBytes:       20 * 1024 * 1024,
			VideoCaptureTimeout: Duration(10 * time.Second),
			FFmpegPath:          "ffmpeg",
		},
		Watcher: WatcherConfig{
			Enabled:  true,
			Debounce: Duration(250 * time.Millisecond),
		},
	}
}

// ConfigPath returns the config file path: ~/.config/iyeris/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "iyeris", "config.json")
}

// Load reads the configuration from the config file
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from an explicit path
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("Config: failed to create directory %s: %v", configDir, err)
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		// Create default config file
		log.Printf("Config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			log.Printf("Config: failed to save default config: %v", saveErr)
			return saveErr
		}
		return nil
	}
	if err != nil {
		log.Printf("Config: failed to read %s: %v", m.path, err)
		return err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Store error for caller display, use defaults
		log.Printf("Config: JSON parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil // Don't return error - we're using defaults
	}

	clamp(&cfg)
	m.config = &cfg
	return nil
}

// clamp forces out-of-range values back to usable ones rather than failing
func clamp(cfg *Config) {
	def := DefaultConfig()
	if cfg.View.BatchSize <= 0 {
		cfg.View.BatchSize = def.View.BatchSize
	}
	if cfg.View.VirtualizeThreshold <= 0 {
		cfg.View.VirtualizeThreshold = def.View.VirtualizeThreshold
	}
	if cfg.View.HugeDirectoryWarning < cfg.View.VirtualizeThreshold {
		cfg.View.HugeDirectoryWarning = def.View.HugeDirectoryWarning
	}
	if cfg.View.StreamChunkSize <= 0 {
		cfg.View.StreamChunkSize = def.View.StreamChunkSize
	}
	switch cfg.View.DefaultSort {
	case "name", "date", "size", "type":
	default:
		cfg.View.DefaultSort = def.View.DefaultSort
	}
	if cfg.Thumbnail.Concurrency <= 0 {
		cfg.Thumbnail.Concurrency = def.Thumbnail.Concurrency
	}
	if cfg.Thumbnail.CacheCapacity <= 0 {
		cfg.Thumbnail.CacheCapacity = def.Thumbnail.CacheCapacity
	}
	if cfg.Thumbnail.MaxPixels <= 0 {
		cfg.Thumbnail.MaxPixels = def.Thumbnail.MaxPixels
	}
	if cfg.Thumbnail.MaxImageBytes <= 0 {
		cfg.Thumbnail.MaxImageBytes = def.Thumbnail.MaxImageBytes
	}
	if cfg.Thumbnail.VideoCaptureTimeout <= 0 {
		cfg.Thumbnail.VideoCaptureTimeout = def.Thumbnail.VideoCaptureTimeout
	}
	if cfg.Thumbnail.FFmpegPath == "" {
		cfg.Thumbnail.FFmpegPath = def.Thumbnail.FFmpegPath
	}
	if cfg.Watcher.Debounce <= 0 {
		cfg.Watcher.Debounce = def.Watcher.Debounce
	}
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetShowHidden updates the hidden-entry visibility setting
func (m *Manager) SetShowHidden(show bool) {
	m.mu.Lock()
	m.config.View.ShowHidden = show
	m.mu.Unlock()
	m.Save()
}

// SetSort updates the sort settings
func (m *Manager) SetSort(key string, ascending bool) {
	m.mu.Lock()
	m.config.View.DefaultSort = key
	m.config.View.SortAscending = ascending
	m.mu.Unlock()
	m.Save()
}
