package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const configDir = ".chatterm"
const configFile = "config.toml"

const (
	DefaultEndpoint       = "http://localhost:3000/api/chat"
	DefaultConversationID = "3a99f679-12f5-4776-b231-034aecc5f78c"
	DefaultCodeTheme      = "monokai"

	// APIKeyEnv overrides api_key from the file when set.
	APIKeyEnv = "CHATTERM_API_KEY"
)

type Config struct {
	Endpoint         string `toml:"endpoint"`
	APIKey           string `toml:"api_key,omitempty"`
	Model            string `toml:"model,omitempty"`
	System           string `toml:"system,omitempty"`
	ConversationID   string `toml:"conversation_id,omitempty"`
	CodeTheme        string `toml:"code_theme,omitempty"`
	LastConversation string `toml:"last_conversation,omitempty"`
	Profile          string `toml:"-"`
}

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{"endpoint", "api_key", "model", "system", "conversation_id", "code_theme"}

// Dir returns the directory holding config files and the debug log.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

func configPath(profile string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	filename := configFile
	if profile != "" {
		filename = fmt.Sprintf("config-%s.toml", profile)
	}
	return filepath.Join(dir, filename), nil
}

func Load(profile string) (*Config, error) {
	path, err := configPath(profile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Profile = profile
	cfg.applyDefaults()

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ConversationID == "" {
		c.ConversationID = DefaultConversationID
	}
	if c.CodeTheme == "" {
		c.CodeTheme = DefaultCodeTheme
	}
}

func (c *Config) Save() error {
	path, err := configPath(c.Profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) profileFlag() string {
	if c.Profile == "" {
		return ""
	}
	return " --profile " + c.Profile
}

func (c *Config) Validate() error {
	pf := c.profileFlag()
	if c.Endpoint == "" {
		return fmt.Errorf("no endpoint configured. Run: chatterm%s set endpoint <url>", pf)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an http(s) URL. Run: chatterm%s set endpoint <url>", c.Endpoint, pf)
	}
	return nil
}

// Set updates a single setting by its file key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "endpoint":
		c.Endpoint = strings.TrimSpace(value)
		return c.Validate()
	case "api_key":
		c.APIKey = value
	case "model":
		c.Model = value
	case "system":
		c.System = value
	case "conversation_id":
		c.ConversationID = value
	case "code_theme":
		c.CodeTheme = value
	default:
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns a setting by its file key. The API key is masked.
func (c *Config) Get(key string) string {
	switch key {
	case "endpoint":
		return c.Endpoint
	case "api_key":
		return MaskSecret(c.APIKey)
	case "model":
		return c.Model
	case "system":
		return c.System
	case "conversation_id":
		return c.ConversationID
	case "code_theme":
		return c.CodeTheme
	}
	return ""
}

// MaskSecret keeps the last four characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}

func ListProfiles() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config directory: %w", err)
	}
	var profiles []string
	for _, e := range entries {
		name := e.Name()
		if name == configFile {
			profiles = append(profiles, "default")
			continue
		}
		if strings.HasPrefix(name, "config-") && strings.HasSuffix(name, ".toml") {
			profiles = append(profiles, strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".toml"))
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}

func ProfileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
