package client

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// Config is the replica's flat key=value settings file, one "key = value"
// pair per line. Remotes are namespaced as "remote.<name>.url".
type Config struct {
	values map[string]string
}

// DefaultConfig returns an empty configuration.
func DefaultConfig() *Config {
	return &Config{values: map[string]string{}}
}

func configPath(anchorDir string) string { return filepath.Join(anchorDir, "config") }

// LoadConfig reads the replica's config file. A missing file loads as empty.
func LoadConfig(anchorDir string) (*Config, error) {
	f, err := os.Open(configPath(anchorDir))
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "open config")
	}
	defer f.Close()

	cfg := DefaultConfig()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cfg.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "read config")
	}
	return cfg, nil
}

// Save writes the config back out, one sorted "key = value" line per entry.
func (c *Config) Save(anchorDir string) error {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(c.values[k])
		sb.WriteString("\n")
	}

	if err := os.WriteFile(configPath(anchorDir), []byte(sb.String()), 0o644); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "write config")
	}
	return nil
}

// Get returns a key's value and whether it was set.
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Set assigns a key's value.
func (c *Config) Set(key, value string) {
	c.values[key] = value
}

// All returns every key/value pair, sorted by key.
func (c *Config) All() []KV {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]KV, 0, len(keys))
	for _, k := range keys {
		out = append(out, KV{Key: k, Value: c.values[k]})
	}
	return out
}

// KV is a single config entry, used by `anchor config --list`.
type KV struct {
	Key   string
	Value string
}

func remoteURLKey(name string) string { return "remote." + name + ".url" }

// SetRemote records a remote's URL.
func (c *Config) SetRemote(name, url string) {
	c.Set(remoteURLKey(name), url)
}

// Remote returns a remote's URL, or false if it isn't configured.
func (c *Config) Remote(name string) (string, bool) {
	return c.Get(remoteURLKey(name))
}

// RemoteEntry is a single configured remote.
type RemoteEntry struct {
	Name string
	URL  string
}

// Remotes lists every configured remote, sorted by name.
func (c *Config) Remotes() []RemoteEntry {
	var out []RemoteEntry
	for _, kv := range c.All() {
		name, ok := strings.CutPrefix(kv.Key, "remote.")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ".url")
		if !ok {
			continue
		}
		out = append(out, RemoteEntry{Name: name, URL: kv.Value})
	}
	return out
}
