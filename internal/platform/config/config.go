// Package config carga la configuración del servicio desde un YAML opcional y
// variables de entorno (con prefijo SHARES_ o sin prefijo).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SHARES"

type AuthMode string

const (
	AuthModeDev    AuthMode = "dev"
	AuthModeJWT    AuthMode = "jwt"
	AuthModeRemote AuthMode = "remote"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port    string `mapstructure:"port"`
	AppName string `mapstructure:"app_name"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Sin DSN se usan los stores en memoria.
	DBDSN         string `mapstructure:"db_dsn"`
	DBAutoMigrate bool   `mapstructure:"db_auto_migrate"`

	AuthMode         AuthMode `mapstructure:"auth_mode"`
	JWTSecret        string   `mapstructure:"jwt_secret"`
	JWTIssuer        string   `mapstructure:"jwt_issuer"`
	AuthRemoteURL    string   `mapstructure:"auth_remote_url"`
	AuthRemoteAPIKey string   `mapstructure:"auth_remote_api_key"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	ShareKeyLength      int `mapstructure:"share_key_length"`
	ShareKeyMaxAttempts int `mapstructure:"share_key_max_attempts"`
	OwnerCacheSize      int `mapstructure:"owner_cache_size"`
}

var defaults = map[string]any{
	"port":                   "8080",
	"app_name":               "project-share-manager",
	"log_level":              "info",
	"log_format":             "json",
	"db_dsn":                 "",
	"db_auto_migrate":        false,
	"auth_mode":              string(AuthModeDev),
	"jwt_secret":             "",
	"jwt_issuer":             "",
	"auth_remote_url":        "",
	"auth_remote_api_key":    "",
	"cors_allowed_origins":   []string{"*"},
	"share_key_length":       32,
	"share_key_max_attempts": 5,
	"owner_cache_size":       1024,
}

// Load lee path (si no es vacío) y luego el entorno. El entorno gana sobre el archivo.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, val := range defaults {
		v.SetDefault(key, val)
		envName := strings.ToUpper(key)
		if err := v.BindEnv(key, EnvPrefix+"_"+envName, envName); err != nil {
			return Config{}, err
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	c.AuthMode = AuthMode(strings.ToLower(strings.TrimSpace(string(c.AuthMode))))
	c.CORSAllowedOrigins = splitList(c.CORSAllowedOrigins)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port required", ErrInvalidConfig)
	}
	switch c.AuthMode {
	case AuthModeDev:
	case AuthModeJWT:
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("%w: auth_mode=jwt requires jwt_secret", ErrInvalidConfig)
		}
	case AuthModeRemote:
		if strings.TrimSpace(c.AuthRemoteURL) == "" || strings.TrimSpace(c.AuthRemoteAPIKey) == "" {
			return fmt.Errorf("%w: auth_mode=remote requires auth_remote_url and auth_remote_api_key", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth_mode %q", ErrInvalidConfig, c.AuthMode)
	}
	if c.ShareKeyLength != 0 && c.ShareKeyLength < 16 {
		return fmt.Errorf("%w: share_key_length must be at least 16", ErrInvalidConfig)
	}
	if c.ShareKeyMaxAttempts < 0 || c.OwnerCacheSize < 0 {
		return fmt.Errorf("%w: negative limits", ErrInvalidConfig)
	}
	return nil
}

// Addr devuelve la dirección de escucha para http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// splitList acepta tanto una lista YAML como "a,b c" desde el entorno.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
