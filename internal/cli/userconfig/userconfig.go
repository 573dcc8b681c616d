package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "skillbridge"
	configFileName = "config.json"
)

// UserConfig is the per-user state kept in ~/.config/skillbridge/config.json
type UserConfig struct {
	SelectedServerURL string `json:"selected_server_url"`

	// LastEmails maps a server URL to the email last used to log in there
	LastEmails map[string]string `json:"last_emails,omitempty"`
}

// GetConfigDir returns ~/.config/skillbridge
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration. A missing file is an empty config.
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the user configuration, readable only by the user
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return nil
}

func update(fn func(cfg *UserConfig)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	fn(cfg)
	return Save(cfg)
}

// SetSelectedServer records the server used when no --server flag is given
func SetSelectedServer(serverURL string) error {
	return update(func(cfg *UserConfig) { cfg.SelectedServerURL = serverURL })
}

// GetSelectedServer returns the selected server URL, or "" if none
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedServerURL, nil
}

// SetLastEmail remembers the login email for a server
func SetLastEmail(serverURL, email string) error {
	return update(func(cfg *UserConfig) {
		if cfg.LastEmails == nil {
			cfg.LastEmails = map[string]string{}
		}
		cfg.LastEmails[serverURL] = email
	})
}

// GetLastEmail returns the email last used on a server, or ""
func GetLastEmail(serverURL string) string {
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.LastEmails[serverURL]
}
