package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	DefaultConfigFileName = "config.json"
	DefaultDotEnvFile     = ".env"
	DefaultModelName      = "gpt-4o-mini"
	DefaultLogFile        = "code_explanations.txt"
	DefaultLogMode        = "append"
)

const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModel   = "NBCOMPLETE_MODEL"
	EnvLogFile = "NBCOMPLETE_LOG_FILE"
	EnvLogMode = "NBCOMPLETE_LOG_MODE"
)

var (
	DefaultConfigDir      = os.ExpandEnv("$HOME/.config/nbcomplete")
	DefaultConfigFilePath = filepath.Join(DefaultConfigDir, DefaultConfigFileName)
)

var ErrMissingAPIKey = errors.New("missing API key: set " + EnvAPIKey + " in the environment or in " + DefaultDotEnvFile)

type Config struct {
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
	ModelName  string `json:"model_name,omitempty"`
	LogFile    string `json:"log_file,omitempty"`
	LogMode    string `json:"log_mode,omitempty"`
	MaxRetries uint64 `json:"max_retries,omitempty"`
}

// Save writes the configuration to DefaultConfigFilePath.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFilePath)
}

func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// the file holds the API key
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(c); err != nil {
		return err
	}
	return nil
}

func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration from the default locations.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFilePath, DefaultDotEnvFile)
}

// LoadFrom builds a Config from, in increasing priority: the JSON file at
// configPath, the dotenv file at dotEnvPath and the process environment.
// Either file may be missing. Variables already present in the environment
// are not overridden by the dotenv file.
func LoadFrom(configPath, dotEnvPath string) (*Config, error) {
	cfg, err := LoadFromFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}

	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
	}

	override(&cfg.APIKey, EnvAPIKey)
	override(&cfg.BaseURL, EnvBaseURL)
	override(&cfg.ModelName, EnvModel)
	override(&cfg.LogFile, EnvLogFile)
	override(&cfg.LogMode, EnvLogMode)

	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
	if cfg.LogMode == "" {
		cfg.LogMode = DefaultLogMode
	}
	return cfg, nil
}

func override(field *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*field = value
	}
}

// Validate reports whether the configuration can be used to reach the
// completion endpoint.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
