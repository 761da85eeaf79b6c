package service

import (
	"encoding/json"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
)

// DefaultAggregatorURL is used until the user configures an aggregator.
const DefaultAggregatorURL = "http://localhost:8080"

// Config is the persisted client configuration.
type Config struct {
	AggregatorURL string `json:"aggregator_url"`
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".intmax"), nil
}

// ConfigPath returns the config file path under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config")
}

// WalletPath returns the wallet snapshot path under dir. Snapshots are
// segregated per aggregator host so switching aggregators cannot mix
// states.
func WalletPath(dir string, aggregatorURL string) (string, error) {
	parsed, err := url.Parse(aggregatorURL)
	if err != nil {
		return "", err
	}
	host := parsed.Host
	if host == "" {
		host = parsed.Path
	}
	return filepath.Join(dir, host, "wallet"), nil
}

// LoadConfig reads the config file; a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := Config{AggregatorURL: DefaultAggregatorURL}
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// SaveConfig writes the config file, creating the directory if needed.
func SaveConfig(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0600)
}
