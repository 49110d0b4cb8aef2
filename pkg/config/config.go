package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	// Producer Configurations
	ProducerPath string   `mapstructure:"PRODUCER_PATH" validate:"required"`
	ProducerArgs []string `mapstructure:"PRODUCER_ARGS"`
	MonitorFlag  string   `mapstructure:"PRODUCER_MONITOR_FLAG" validate:"required"`

	// One-shot snapshot call. 0 disables the timeout.
	SnapshotTimeoutSeconds int `mapstructure:"SNAPSHOT_TIMEOUT_SECONDS" validate:"min=0"`

	// Server Configurations
	ServerAddress string `mapstructure:"SERVER_ADDRESS" validate:"required"`

	// Internal Queue Settings
	EventQueueSize int `mapstructure:"EVENT_QUEUE_SIZE" validate:"min=1"`

	// Security/Encryption Configurations. The charger API credentials are
	// stored AES-encrypted (see cmd/credtool) and decrypted only to be
	// injected into the producer's environment.
	EncryptionKey  string `mapstructure:"BRIDGE_SECRET"`
	ChargerAPIUser string `mapstructure:"CHARGER_API_USERNAME_ENC"`
	ChargerAPIPass string `mapstructure:"CHARGER_API_PASSWORD_ENC"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Set Defaults
	v.SetDefault("PRODUCER_PATH", "python-scripts/charger_api.py")
	v.SetDefault("PRODUCER_ARGS", []string{})
	v.SetDefault("PRODUCER_MONITOR_FLAG", "--monitor")
	v.SetDefault("SNAPSHOT_TIMEOUT_SECONDS", 60)
	v.SetDefault("SERVER_ADDRESS", ":8090")
	v.SetDefault("EVENT_QUEUE_SIZE", 100)
	v.SetDefault("BRIDGE_SECRET", "")
	v.SetDefault("CHARGER_API_USERNAME_ENC", "")
	v.SetDefault("CHARGER_API_PASSWORD_ENC", "")

	// 2. Read app.yaml if exists
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// 3. Read .env if exists (overriding app.yaml)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Ignore if .env is missing
		}
	}

	// 4. Allow Viper to read Environment Variables (highest priority)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
