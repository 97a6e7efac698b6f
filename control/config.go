// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with validated updates and reload
// notification.

package control

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-fetch/pool"
	"github.com/momentics/hioload-fetch/protocol"
	"github.com/momentics/hioload-fetch/reactor"
)

// Configuration keys accepted by ConfigStore.Apply.
const (
	KeyPort      = "port"
	KeyChunkSize = "chunk_size"
	KeyMaxEvents = "max_events"
	KeyDecode    = "decode"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
)

// Config holds the tunables of a fetch run.
type Config struct {
	// Port is used when a URL carries no explicit port.
	Port      int
	ChunkSize int
	MaxEvents int
	Decode    protocol.DecodeMode
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns plain HTTP on port 80 with 512-byte receives.
func DefaultConfig() Config {
	return Config{
		Port:      80,
		ChunkSize: pool.DefaultChunkSize,
		MaxEvents: reactor.DefaultMaxEvents,
		Decode:    protocol.DecodeJSON,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxEvents <= 0 {
		return fmt.Errorf("max events must be positive, got %d", c.MaxEvents)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ConfigStore keeps the current Config and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store holding DefaultConfig.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{config: DefaultConfig()}
}

// Snapshot returns a copy of the current configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Apply merges values into the configuration. The update is all or nothing:
// on an unknown key or invalid value the store is left untouched.
func (cs *ConfigStore) Apply(values map[string]any) error {
	cs.mu.Lock()
	next := cs.config
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := set(&next, k, values[k]); err != nil {
			cs.mu.Unlock()
			return fmt.Errorf("config %s: %w", k, err)
		}
	}
	if err := next.Validate(); err != nil {
		cs.mu.Unlock()
		return err
	}
	cs.config = next
	listeners := slices.Clone(cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// OnReload registers a listener called after every successful Apply.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

func set(c *Config, key string, v any) error {
	switch key {
	case KeyPort:
		return setInt(&c.Port, v)
	case KeyChunkSize:
		return setInt(&c.ChunkSize, v)
	case KeyMaxEvents:
		return setInt(&c.MaxEvents, v)
	case KeyDecode:
		m, err := protocol.ParseDecodeMode(fmt.Sprint(v))
		if err != nil {
			return err
		}
		c.Decode = m
	case KeyLogLevel:
		c.LogLevel = strings.ToLower(fmt.Sprint(v))
	case KeyLogFormat:
		c.LogFormat = strings.ToLower(fmt.Sprint(v))
	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

func setInt(dst *int, v any) error {
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		*dst = int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return err
		}
		*dst = i
	default:
		return fmt.Errorf("unsupported type %T", v)
	}
	return nil
}
