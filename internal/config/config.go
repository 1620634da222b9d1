package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "XIQ"
	configName = "config"
	configType = "toml"
	configDir  = ".xiq"
)

const (
	KeyBaseURL         = "api.base_url"
	KeyToken           = "api.token"
	KeyTimeout         = "api.timeout"
	KeySubmitTimeout   = "api.submit_timeout"
	KeyRateLimit       = "api.rate_limit_per_minute"
	KeyRetryBudget     = "retry.budget"
	KeyInitialWait     = "lro.initial_wait"
	KeyPollInterval    = "lro.poll_interval"
	KeyMaxPolls        = "lro.max_polls"
	KeyPageSize        = "devices.page_size"
	KeyVerifyConnected = "devices.verify_connected"
	KeyLogFile         = "log.file"
	KeyLogLevel        = "log.level"
	KeyLogMaxSizeMB    = "log.max_size_mb"
	KeyLogMaxBackups   = "log.max_backups"
	KeyOutputDir       = "output.dir"
	KeyChecksFile      = "checks.file"
	KeyCheck           = "checks.name"
)

type Config struct {
	API     APIConfig
	Retry   RetryConfig
	LRO     LROConfig
	Devices DevicesConfig
	Log     LogConfig
	Output  OutputConfig
	Checks  ChecksConfig
}

type APIConfig struct {
	BaseURL            string
	Token              string
	Timeout            time.Duration
	SubmitTimeout      time.Duration
	RateLimitPerMinute int
}

type RetryConfig struct {
	Budget int
}

type LROConfig struct {
	InitialWait  time.Duration
	PollInterval time.Duration
	MaxPolls     int
}

type DevicesConfig struct {
	PageSize        int
	VerifyConnected bool
}

type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

type OutputConfig struct {
	Dir string
}

type ChecksConfig struct {
	File string
	Name string
}

func SetDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyBaseURL, "https://api.extremecloudiq.com")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeySubmitTimeout, 60*time.Second)
	v.SetDefault(KeyRateLimit, 125)
	v.SetDefault(KeyRetryBudget, 5)
	v.SetDefault(KeyInitialWait, 60*time.Second)
	v.SetDefault(KeyPollInterval, 120*time.Second)
	v.SetDefault(KeyMaxPolls, 10)
	v.SetDefault(KeyPageSize, 100)
	v.SetDefault(KeyVerifyConnected, false)
	v.SetDefault(KeyLogFile, "XIQ_PoE_log.log")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogMaxSizeMB, 5)
	v.SetDefault(KeyLogMaxBackups, 10)
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyChecksFile, filepath.Join(homeDir, configDir, "checks.toml"))
	v.SetDefault(KeyCheck, "poe")
}

// Load reads .env, the optional config file, and XIQ_ environment variables into v.
// An explicit configFile must exist; the default ~/.xiq/config.toml is optional.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	SetDefaults(v, homeDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		API: APIConfig{
			BaseURL:            v.GetString(KeyBaseURL),
			Token:              v.GetString(KeyToken),
			Timeout:            v.GetDuration(KeyTimeout),
			SubmitTimeout:      v.GetDuration(KeySubmitTimeout),
			RateLimitPerMinute: v.GetInt(KeyRateLimit),
		},
		Retry: RetryConfig{Budget: v.GetInt(KeyRetryBudget)},
		LRO: LROConfig{
			InitialWait:  v.GetDuration(KeyInitialWait),
			PollInterval: v.GetDuration(KeyPollInterval),
			MaxPolls:     v.GetInt(KeyMaxPolls),
		},
		Devices: DevicesConfig{
			PageSize:        v.GetInt(KeyPageSize),
			VerifyConnected: v.GetBool(KeyVerifyConnected),
		},
		Log: LogConfig{
			File:       v.GetString(KeyLogFile),
			Level:      v.GetString(KeyLogLevel),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
		},
		Output: OutputConfig{Dir: v.GetString(KeyOutputDir)},
		Checks: ChecksConfig{
			File: v.GetString(KeyChecksFile),
			Name: v.GetString(KeyCheck),
		},
	}
}

func (c Config) Validate() error {
	if c.Retry.Budget < 2 {
		return fmt.Errorf("%s must be at least 2, got %d", KeyRetryBudget, c.Retry.Budget)
	}
	if c.LRO.MaxPolls < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyMaxPolls, c.LRO.MaxPolls)
	}
	if c.LRO.InitialWait < 0 || c.LRO.PollInterval < 0 {
		return fmt.Errorf("%s and %s must not be negative", KeyInitialWait, KeyPollInterval)
	}
	if c.Devices.PageSize < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyPageSize, c.Devices.PageSize)
	}

	return nil
}
