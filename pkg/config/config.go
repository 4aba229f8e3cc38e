package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Neopallium/sub-script/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. SUBSCRIPT_SERVER_PORT
const EnvPrefix = "SUBSCRIPT"

// Schema files named by these variables are appended after the configured schemas,
// substrate types first.
const (
	EnvSubstrateTypes = "SUBSTRATE_TYPES"
	EnvCustomTypes    = "CUSTOM_TYPES"
)

// Config represents the sub-script configuration
type Config struct {
	Schemas []string `yaml:"schemas,omitempty" mapstructure:"schemas"`
	DataDir string   `yaml:"data_dir" mapstructure:"data_dir"`
	Server  Server   `yaml:"server" mapstructure:"server"`
	Codec   Codec    `yaml:"codec" mapstructure:"codec"`
	Logging Logging  `yaml:"logging" mapstructure:"logging"`
}

// Server configures the HTTP codec service
type Server struct {
	Port int    `yaml:"port" mapstructure:"port"`
	Bind string `yaml:"bind" mapstructure:"bind"`
	// APIKey guards /api/v1 when non-empty
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// RateLimit is requests per second, 0 disables limiting
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// Codec configures registry policies
type Codec struct {
	Redefine       string `yaml:"redefine" mapstructure:"redefine"`
	UnknownVariant string `yaml:"unknown_variant" mapstructure:"unknown_variant"`
	TokenDecimals  uint32 `yaml:"token_decimals" mapstructure:"token_decimals"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Server: Server{
			Port:      8080,
			Bind:      "127.0.0.1",
			RateLimit: 0,
			Burst:     20,
		},
		Codec: Codec{
			Redefine:       types.RedefineKeep.String(),
			UnknownVariant: types.VariantStrict.String(),
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

func newViper() *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("schemas", []string{})
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.bind", def.Server.Bind)
	v.SetDefault("server.api_key", def.Server.APIKey)
	v.SetDefault("server.rate_limit", def.Server.RateLimit)
	v.SetDefault("server.burst", def.Server.Burst)
	v.SetDefault("codec.redefine", def.Codec.Redefine)
	v.SetDefault("codec.unknown_variant", def.Codec.UnknownVariant)
	v.SetDefault("codec.token_decimals", def.Codec.TokenDecimals)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from configPath, applying defaults and environment
// overrides. An empty configPath yields defaults plus environment only.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if !filepath.IsAbs(configPath) {
			absPath, err := filepath.Abs(configPath)
			if err != nil {
				return nil, fmt.Errorf("invalid config path: %w", err)
			}
			configPath = absPath
		}
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Schemas = appendEnvSchemas(config.Schemas)
	if len(config.Schemas) == 0 {
		config.Schemas = nil
	}

	return &config, nil
}

func appendEnvSchemas(schemas []string) []string {
	for _, name := range []string{EnvSubstrateTypes, EnvCustomTypes} {
		path := os.Getenv(name)
		if path == "" {
			continue
		}
		dup := false
		for _, s := range schemas {
			if s == path {
				dup = true
				break
			}
		}
		if !dup {
			schemas = append(schemas, path)
		}
	}
	return schemas
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600, the file may carry the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges and policy names
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when rate limiting, got: %d", c.Server.Burst)
	}
	if _, _, err := c.Codec.Policies(); err != nil {
		return err
	}
	if _, err := c.Logging.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// Policies parses the configured registry policies
func (c Codec) Policies() (types.RedefinePolicy, types.VariantPolicy, error) {
	redefine, err := types.ParseRedefinePolicy(c.Redefine)
	if err != nil {
		return 0, 0, fmt.Errorf("codec.redefine: %w", err)
	}
	variant, err := types.ParseVariantPolicy(c.UnknownVariant)
	if err != nil {
		return 0, 0, fmt.Errorf("codec.unknown_variant: %w", err)
	}
	return redefine, variant, nil
}

// ZapLevel parses the configured log level
func (l Logging) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./subscript.yaml"
	}
	return filepath.Join(homeDir, ".config", "subscript", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
