// Package config reads and writes the user-wide wintertools
// configuration at ~/.config/wintertools/config.toml. Values are
// addressed by dotted paths ("github.token", "jlink.path") and can be
// prompted for interactively the first time they are needed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/manifoldco/promptui"
	homedir "github.com/mitchellh/go-homedir"
)

// Config is a tree of configuration values backed by a TOML file.
type Config struct {
	values map[string]interface{}
	// path is the file used for reading and writing this config.
	path string
}

// DefaultPath returns ~/.config/wintertools/config.toml.
func DefaultPath() (string, error) {
	return homedir.Expand(filepath.Join("~", ".config", "wintertools", "config.toml"))
}

// Load reads the config at path, or the default path when empty. A
// missing file yields an empty config bound to that path.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
	}

	c := &Config{values: map[string]interface{}{}, path: path}

	if _, err := toml.DecodeFile(path, &c.values); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Path returns the file this config reads from and writes to.
func (c *Config) Path() string { return c.path }

// Get looks up a dotted path. The second return is false when any
// segment is missing.
func (c *Config) Get(dotted string) (string, bool) {
	node := interface{}(c.values)
	for _, segment := range strings.Split(dotted, ".") {
		table, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		node, ok = table[segment]
		if !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	if !ok {
		return fmt.Sprintf("%v", node), true
	}
	return s, true
}

// Set stores a value at a dotted path, creating intermediate tables as
// needed, and writes the config back out.
func (c *Config) Set(dotted, value string) error {
	segments := strings.Split(dotted, ".")
	table := c.values
	for _, segment := range segments[:len(segments)-1] {
		next, ok := table[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			table[segment] = next
		}
		table = next
	}
	table[segments[len(segments)-1]] = value
	return c.Write()
}

// GetOrPrompt returns the value at a dotted path, asking the user for
// it and persisting the answer when it is missing.
func (c *Config) GetOrPrompt(dotted string) (string, error) {
	if v, ok := c.Get(dotted); ok {
		return v, nil
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Config %s is missing, what should it be?", dotted),
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if err := c.Set(dotted, value); err != nil {
		return "", err
	}
	return value, nil
}

// GetOrDefault returns the value at a dotted path, storing and
// returning fallback when it is missing.
func (c *Config) GetOrDefault(dotted, fallback string) (string, error) {
	if v, ok := c.Get(dotted); ok {
		return v, nil
	}
	if err := c.Set(dotted, fallback); err != nil {
		return "", err
	}
	return fallback, nil
}

// Keys returns every dotted path in the config, sorted.
func (c *Config) Keys() []string {
	var keys []string
	var walk func(prefix string, table map[string]interface{})
	walk = func(prefix string, table map[string]interface{}) {
		for k, v := range table {
			dotted := k
			if prefix != "" {
				dotted = prefix + "." + k
			}
			if sub, ok := v.(map[string]interface{}); ok {
				walk(dotted, sub)
				continue
			}
			keys = append(keys, dotted)
		}
	}
	walk("", c.values)
	sort.Strings(keys)
	return keys
}

// Write persists the config atomically: encode to a temp file in the
// same directory, then rename over the destination.
func (c *Config) Write() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(c.values); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp config file: %w", err)
	}
	return nil
}
