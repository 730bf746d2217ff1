package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Endpoint: "http://localhost:3000/api/chat"},
			wantErr: false,
		},
		{
			name:    "https endpoint",
			cfg:     Config{Endpoint: "https://chat.example.com/api/chat"},
			wantErr: false,
		},
		{
			name:    "missing endpoint",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "non-http scheme",
			cfg:     Config{Endpoint: "ftp://example.com"},
			wantErr: true,
		},
		{
			name:    "no host",
			cfg:     Config{Endpoint: "http://"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv(APIKeyEnv, "")

	original := &Config{
		Endpoint:       "http://example.com/api/chat",
		APIKey:         "sk-secret",
		Model:          "gpt-4o",
		System:         "Be brief.",
		ConversationID: "conv-1",
		CodeTheme:      "dracula",
	}

	if err := original.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(tmpDir, configDir, configFile)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `endpoint = "http://example.com/api/chat"`) {
		t.Errorf("config file is not TOML:\n%s", data)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *loaded != *original {
		t.Errorf("Load() = %+v, want %+v", *loaded, *original)
	}
}

func TestLoadMissing(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() on missing config returned error: %v", err)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want default %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.ConversationID != DefaultConversationID {
		t.Errorf("ConversationID = %q, want %q", cfg.ConversationID, DefaultConversationID)
	}
	if cfg.CodeTheme != DefaultCodeTheme {
		t.Errorf("CodeTheme = %q, want %q", cfg.CodeTheme, DefaultCodeTheme)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, configDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("endpoint = [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err == nil {
		t.Fatal("Load() expected error for malformed TOML")
	}
}

func TestAPIKeyEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	if err := (&Config{Endpoint: DefaultEndpoint, APIKey: "from-file"}).Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv(APIKeyEnv, "from-env")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-env")
	}
}

func TestLoadSaveProfile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	original := &Config{
		Endpoint: "http://staging.example.com/api/chat",
		Profile:  "staging",
	}

	if err := original.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(tmpDir, configDir, "config-staging.toml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("profile config file not created at %s: %v", path, err)
	}

	defaultPath := filepath.Join(tmpDir, configDir, configFile)
	if _, err := os.Stat(defaultPath); err == nil {
		t.Error("default config file should not exist")
	}

	loaded, err := Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Endpoint != original.Endpoint {
		t.Errorf("Endpoint = %q, want %q", loaded.Endpoint, original.Endpoint)
	}
	if loaded.Profile != "staging" {
		t.Errorf("Profile = %q, want %q", loaded.Profile, "staging")
	}
}

func TestListProfiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	got, err := ListProfiles()
	if err != nil || got != nil {
		t.Fatalf("ListProfiles() on empty home = %v, %v; want nil, nil", got, err)
	}

	for _, p := range []string{"", "work", "beta"} {
		if err := (&Config{Endpoint: DefaultEndpoint, Profile: p}).Save(); err != nil {
			t.Fatalf("Save(%q) error = %v", p, err)
		}
	}

	got, err = ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	want := []string{"beta", "default", "work"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListProfiles() = %v, want %v", got, want)
	}
}

func TestSetGet(t *testing.T) {
	cfg := &Config{Endpoint: DefaultEndpoint}

	for _, key := range []string{"model", "system", "conversation_id", "code_theme"} {
		if err := cfg.Set(key, "v-"+key); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
		if got := cfg.Get(key); got != "v-"+key {
			t.Errorf("Get(%q) = %q, want %q", key, got, "v-"+key)
		}
	}

	if err := cfg.Set("api_key", "sk-abcdef1234"); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Get("api_key"); got != "********1234" {
		t.Errorf("Get(api_key) = %q, want masked", got)
	}

	if err := cfg.Set("endpoint", "not a url"); err == nil {
		t.Error("Set(endpoint) with invalid URL should fail")
	}
	if err := cfg.Set("color", "red"); err == nil {
		t.Error("Set(color) should fail for unknown key")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "***"},
		{"abcdefgh", "********efgh"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProfileName(t *testing.T) {
	tests := []struct {
		profile string
		want    string
	}{
		{"", "default"},
		{"staging", "staging"},
	}
	for _, tt := range tests {
		got := ProfileName(tt.profile)
		if got != tt.want {
			t.Errorf("ProfileName(%q) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestValidateProfileHint(t *testing.T) {
	cfg := Config{Profile: "staging"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "--profile staging"; !strings.Contains(err.Error(), want) {
		t.Errorf("Validate() error = %q, should contain %q", err.Error(), want)
	}
}
