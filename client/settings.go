package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultAPIURL is used when neither the settings file nor the
	// environment names a server.
	DefaultAPIURL = "http://localhost:3000"

	// APIURLEnv overrides api_url from the settings file.
	APIURLEnv = "TODO_API_URL"
)

// Settings is the CLI's config.toml.
type Settings struct {
	APIURL string `toml:"api_url"`
}

// SettingsPath is ~/.config/gotodo/config.toml.
func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadSettings reads path if it exists, then applies the environment.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{APIURL: DefaultAPIURL}

	if path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if v := os.Getenv(APIURLEnv); v != "" {
		s.APIURL = v
	}

	s.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")
	if s.APIURL == "" {
		s.APIURL = DefaultAPIURL
	}
	return s, nil
}
