package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	SoundCloud  SoundCloudConfig  `toml:"soundcloud"`
	Matching    MatchingConfig    `toml:"matching"`
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Store       StoreConfig       `toml:"store"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	SoundCloud SoundCloudCredentials `toml:"soundcloud"`
}

// SoundCloudCredentials contains the OAuth client registration.
//
// AccessToken is never read from or written to the file; it is only populated from the environment.
type SoundCloudCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri" validate:"omitempty,url"`
	Scope        string `toml:"scope"`
	AccessToken  string `toml:"-"`
}

// SoundCloudConfig contains API endpoints.
type SoundCloudConfig struct {
	AuthURL        string `toml:"auth_url" validate:"required,url"`
	TokenURL       string `toml:"token_url" validate:"required,url"`
	APIURL         string `toml:"api_url" validate:"required,url"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=0,max=600"`
}

// Timeout returns the HTTP client timeout. Zero disables it.
func (c SoundCloudConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MatchingConfig controls paging and classification.
type MatchingConfig struct {
	PageSize    int `toml:"page_size" validate:"min=1,max=200"`
	ReviewLimit int `toml:"review_limit" validate:"min=1,max=50"`
	RowLimit    int `toml:"row_limit" validate:"min=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string  `toml:"host" validate:"required"`
	Port               int     `toml:"port" validate:"min=1,max=65535"`
	CookieSecret       string  `toml:"cookie_secret"`
	VerifierTTLMinutes int     `toml:"verifier_ttl_minutes" validate:"min=1,max=60"`
	RateLimit          float64 `toml:"rate_limit" validate:"gte=0"`
	Burst              int     `toml:"burst" validate:"min=0"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// VerifierTTL returns how long a PKCE verifier stays redeemable.
func (c ServerConfig) VerifierTTL() time.Duration {
	return time.Duration(c.VerifierTTLMinutes) * time.Minute
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"min=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"min=0"`
}

// StoreConfig selects the verifier store backend.
type StoreConfig struct {
	Driver string `toml:"driver" validate:"oneof=memory sqlite"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path, falling back to [DefaultConfig] when the file does not exist,
// then applies the environment (including a .env file in the working directory) on top.
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		config = DefaultConfig()
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with environment variables.
//
// lookup is usually [os.LookupEnv]; tests pass a map-backed func.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("SOUNDCLOUD_CLIENT_ID", &c.Credentials.SoundCloud.ClientID)
	str("SOUNDCLOUD_CLIENT_SECRET", &c.Credentials.SoundCloud.ClientSecret)
	str("SOUNDCLOUD_REDIRECT_URI", &c.Credentials.SoundCloud.RedirectURI)
	str("SOUNDCLOUD_ACCESS_TOKEN", &c.Credentials.SoundCloud.AccessToken)
	str("SHAZCLOUD_COOKIE_SECRET", &c.Server.CookieSecret)

	if v, ok := lookup("SHAZCLOUD_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks field constraints, returning an error wrapping [ErrInvalidConfig] that lists each failing field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RequireCredentials reports [ErrMissingCredentials] unless the SoundCloud client is fully registered.
func (c *Config) RequireCredentials() error {
	creds := c.Credentials.SoundCloud
	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if creds.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: credentials.soundcloud %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
