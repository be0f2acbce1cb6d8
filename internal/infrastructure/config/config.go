package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    Server    `mapstructure:"server"`
	Custodian Custodian `mapstructure:"custodian"`
	Auth      Auth      `mapstructure:"auth"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Custodian configuration: the custodian's own account, its owner, and
// the deposit/distribution policies.
type Custodian struct {
	Account         string   `mapstructure:"account"`
	Owner           string   `mapstructure:"owner"`
	PayoutOwners    []string `mapstructure:"payoutOwners"`
	DepositPolicy   string   `mapstructure:"depositPolicy"`
	ReceiptCapacity int      `mapstructure:"receiptCapacity"`
}

// Auth configuration for the HMAC call verifier
type Auth struct {
	HMACSecret         string        `mapstructure:"hmacSecret"`
	TimestampTolerance time.Duration `mapstructure:"timestampTolerance"`
}

// LoadConfig loads configuration from YAML files.
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		viper.SetConfigFile(baseConfigPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		viper.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := viper.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env config file: %w", err)
			}
		}
	}
	// With neither file present the service runs on defaults and
	// environment variables alone.

	viper.SetEnvPrefix("CUSTODIA")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "CUSTODIA_SERVER_PORT", "PORT")
	viper.BindEnv("custodian.account", "CUSTODIA_ACCOUNT")
	viper.BindEnv("custodian.owner", "CUSTODIA_OWNER")
	viper.BindEnv("custodian.depositPolicy", "CUSTODIA_DEPOSIT_POLICY")
	viper.BindEnv("auth.hmacSecret", "CUSTODIA_HMAC_SECRET", "HMAC_SECRET")
	viper.BindEnv("auth.timestampTolerance", "CUSTODIA_TIMESTAMP_TOLERANCE")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Custodian.Account == "" {
		cfg.Custodian.Account = "custodian"
	}
	if cfg.Custodian.Owner == "" {
		cfg.Custodian.Owner = "owner"
	}
	if cfg.Custodian.DepositPolicy == "" {
		cfg.Custodian.DepositPolicy = "hold"
	}
	if cfg.Custodian.ReceiptCapacity == 0 {
		cfg.Custodian.ReceiptCapacity = 1024
	}
	if cfg.Auth.HMACSecret == "" {
		cfg.Auth.HMACSecret = "default-secret-key-change-in-production"
	}
	if cfg.Auth.TimestampTolerance == 0 {
		cfg.Auth.TimestampTolerance = 5 * time.Minute
	}

	// Handle timestamp tolerance given as a duration string (e.g. "5m")
	if toleranceStr := viper.GetString("auth.timestampTolerance"); toleranceStr != "" {
		if parsed, err := time.ParseDuration(toleranceStr); err == nil {
			cfg.Auth.TimestampTolerance = parsed
		}
	}

	if cfg.Custodian.DepositPolicy != "hold" && cfg.Custodian.DepositPolicy != "refund" {
		return nil, fmt.Errorf("invalid deposit policy %q: must be hold or refund", cfg.Custodian.DepositPolicy)
	}

	return &cfg, nil
}
