package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"valgate/internal/core/engine"
	"valgate/internal/pkg/logger"
)

// EnvPrefix is the prefix of environment overrides, e.g. VALGATE_SERVER_PORT
const EnvPrefix = "VALGATE"

// Config is the full application configuration
type Config struct {
	Server ServerConfig        `mapstructure:"server"`
	Log    logger.Config       `mapstructure:"log"`
	Engine engine.EngineConfig `mapstructure:"engine"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// MaxBodyBytes caps the request body read by the server
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.max_body_bytes", 1<<20)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// Init 初始化配置，加载 .env 和 config.yaml
func Init(cfgFile string) error {
	// Load .env file (ignore if not exists)
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes the current viper state into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
