package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keys, also used as flag binding targets
const (
	ConfigKeyAPIBaseURL     = "api_base_url"
	ConfigKeyConfigDir      = "config_dir"
	ConfigKeyGuestEmail     = "guest.email"
	ConfigKeyGuestPassword  = "guest.password"
	ConfigKeyPollInterval   = "poll_interval"
	ConfigKeyRequestTimeout = "request_timeout"
)

// DefaultAPIBaseURL is the backend used when nothing else is configured
const DefaultAPIBaseURL = "http://localhost:8000"

// DefaultRequestTimeout bounds every API request
const DefaultRequestTimeout = 30 * time.Second

// Config is the resolved client configuration
type Config struct {
	APIBaseURL     string
	Guest          GuestCredentials
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Paths          ConfigPaths
	ConfigFileUsed string
}

// NewViper returns a viper instance with the client's defaults and env binding.
// Keys map to READGYE_* variables, e.g. guest.email -> READGYE_GUEST_EMAIL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("READGYE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(ConfigKeyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(ConfigKeyGuestEmail, "")
	v.SetDefault(ConfigKeyGuestPassword, "")
	v.SetDefault(ConfigKeyPollInterval, DefaultPollInterval)
	v.SetDefault(ConfigKeyRequestTimeout, DefaultRequestTimeout)
	return v
}

// LoadConfig resolves configuration from flags, environment, .env files and
// config.yaml, in that order of precedence. Missing files are not errors.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var paths ConfigPaths
	if dir := v.GetString(ConfigKeyConfigDir); dir != "" {
		paths = ConfigPathsAt(dir)
	} else {
		detected, err := DetectConfigPaths()
		if err != nil {
			return nil, err
		}
		paths = detected
	}

	// .env values never override variables already set
	for _, p := range []string{".env", paths.EnvFile()} {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &ParseError{Source: "dotenv", Key: p, Err: err}
		}
		LogDebug("Loaded environment from %s", p)
	}

	v.SetConfigFile(paths.ConfigFile())
	v.SetConfigType("yaml")
	configUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &ParseError{Source: "config", Key: paths.ConfigFile(), Err: err}
		}
		LogDebug("No config file at %s, using defaults", paths.ConfigFile())
	} else {
		configUsed = v.ConfigFileUsed()
	}

	cfg := &Config{
		APIBaseURL: strings.TrimSuffix(v.GetString(ConfigKeyAPIBaseURL), "/"),
		Guest: GuestCredentials{
			Email:    v.GetString(ConfigKeyGuestEmail),
			Password: v.GetString(ConfigKeyGuestPassword),
		},
		PollInterval:   v.GetDuration(ConfigKeyPollInterval),
		RequestTimeout: v.GetDuration(ConfigKeyRequestTimeout),
		Paths:          paths,
		ConfigFileUsed: configUsed,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: must be an http(s) URL", c.APIBaseURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll_interval %s: must be positive", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s: must be positive", c.RequestTimeout)
	}
	return nil
}
