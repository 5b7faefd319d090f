package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
)

const (
	DefaultVerificationTokenTTL = 24 * time.Hour
	DefaultSessionTokenTTL      = time.Hour
	DefaultCompletionTimeout    = 60 * time.Second
	DefaultEmailTimeout         = 10 * time.Second
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpAddr             string        `yaml:"http_addr" validate:"required"`
	BaseURL              string        `yaml:"base_url" validate:"required,url"`
	VerificationTokenTTL time.Duration `yaml:"verification_token_ttl" validate:"gte=0"`
	SessionTokenTTL      time.Duration `yaml:"session_token_ttl" validate:"gte=0"`
	BcryptCost           int           `yaml:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
	LogLevel             string        `yaml:"log_level"`
	LogJSON              bool          `yaml:"log_json"`
	AllowedOrigins       []string      `yaml:"allowed_origins"`
	Completion           Completion    `yaml:"completion"`
}

type Completion struct {
	UpstreamURL string        `yaml:"upstream_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Private struct {
	JwtKey           string `yaml:"jwt_key" validate:"required"`
	Pg               Pg     `yaml:"pg"`
	Email            Email  `yaml:"email"`
	CompletionAPIKey string `yaml:"completion_api_key"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

// Email is optional: an empty SMTPServer switches the service to logging
// verification links instead of mailing them.
type Email struct {
	SMTPServer    string        `yaml:"smtp_server"`
	SMTPPort      int           `yaml:"smtp_port" validate:"required_with=SMTPServer"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SenderName    string        `yaml:"sender_name"`
	SenderAddress string        `yaml:"sender_address" validate:"required_with=SMTPServer"`
	Timeout       time.Duration `yaml:"timeout"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) BaseURL() string {
	return s.Public.BaseURL
}

// applyDefaults fills zero values that have a sane default.
func (s *Config) applyDefaults() {
	if s.Public.VerificationTokenTTL == 0 {
		s.Public.VerificationTokenTTL = DefaultVerificationTokenTTL
	}
	if s.Public.SessionTokenTTL == 0 {
		s.Public.SessionTokenTTL = DefaultSessionTokenTTL
	}
	if s.Public.BcryptCost == 0 {
		s.Public.BcryptCost = bcrypt.DefaultCost
	}
	if s.Public.Completion.Timeout == 0 {
		s.Public.Completion.Timeout = DefaultCompletionTimeout
	}
	if s.Private.Email.Timeout == 0 {
		s.Private.Email.Timeout = DefaultEmailTimeout
	}
	if s.Private.Pg.SSLMode == "" {
		s.Private.Pg.SSLMode = "disable"
	}
}

func (s *Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(s.Public); err != nil {
		return fmt.Errorf("public config: %w", err)
	}
	if err := v.Struct(s.Private); err != nil {
		return fmt.Errorf("private config: %w", err)
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// A missing file or a failed validation is a startup error and panics.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}
