package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Reset     ResetConfig
	Cookie    CookieConfig
	Password  PasswordConfig
	SMTP      SMTPConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	FrontendURL string
	ResetPath   string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ResetConfig drives password-reset tokens. Salt separates the reset signing key
// from the session signing key.
type ResetConfig struct {
	Salt   string
	MaxAge time.Duration
}

type CookieConfig struct {
	AccessName  string
	RefreshName string
	Secure      bool
	Domain      string
	Path        string
}

type PasswordConfig struct {
	Algorithm  string
	BcryptCost int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	AttemptLimit  int
	AttemptWindow time.Duration
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads .env from the working directory (if present) and the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads the given dotenv file, then overlays environment variables.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file %s not found. Falling back to environment variables only.", path)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
			ResetPath:   strings.Trim(v.GetString("RESET_PATH"), "/"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		Reset: ResetConfig{
			Salt:   v.GetString("SECURITY_PASSWORD_SALT"),
			MaxAge: v.GetDuration("RESET_TOKEN_MAX_AGE"),
		},
		Cookie: CookieConfig{
			AccessName:  v.GetString("COOKIE_ACCESS_NAME"),
			RefreshName: v.GetString("COOKIE_REFRESH_NAME"),
			Secure:      v.GetBool("COOKIE_SECURE"),
			Domain:      v.GetString("COOKIE_DOMAIN"),
			Path:        v.GetString("COOKIE_PATH"),
		},
		Password: PasswordConfig{
			Algorithm:  strings.ToLower(v.GetString("PASSWORD_HASH_ALGORITHM")),
			BcryptCost: v.GetInt("PASSWORD_BCRYPT_COST"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("REDIS_ADDR"),
			Password:      v.GetString("REDIS_PASSWORD"),
			DB:            v.GetInt("REDIS_DB"),
			AttemptLimit:  v.GetInt("AUTH_ATTEMPT_LIMIT"),
			AttemptWindow: v.GetDuration("AUTH_ATTEMPT_WINDOW"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: strings.Trim(v.GetString("MQTT_TOPIC_PREFIX"), "/"),
			QoS:         byte(v.GetUint("MQTT_QOS")),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if config.IsProduction() {
		config.Cookie.Secure = true
	}
	if len(config.CORS.AllowedOrigins) == 0 && config.Server.FrontendURL != "" {
		config.CORS.AllowedOrigins = []string{config.Server.FrontendURL}
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("RESET_PATH", "reset-password")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MIGRATE_ON_START", false)

	v.SetDefault("JWT_ISSUER", "warehouse-manager")
	v.SetDefault("JWT_ACCESS_TTL", time.Hour)
	v.SetDefault("JWT_REFRESH_TTL", 30*24*time.Hour)

	v.SetDefault("SECURITY_PASSWORD_SALT", "password-reset")
	v.SetDefault("RESET_TOKEN_MAX_AGE", time.Hour)

	v.SetDefault("COOKIE_ACCESS_NAME", "access_token_cookie")
	v.SetDefault("COOKIE_REFRESH_NAME", "refresh_token_cookie")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_PATH", "/")

	v.SetDefault("PASSWORD_HASH_ALGORITHM", "bcrypt")
	v.SetDefault("PASSWORD_BCRYPT_COST", 12)

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("AUTH_ATTEMPT_LIMIT", 10)
	v.SetDefault("AUTH_ATTEMPT_WINDOW", 15*time.Minute)

	v.SetDefault("MQTT_CLIENT_ID", "warehouse-manager")
	v.SetDefault("MQTT_TOPIC_PREFIX", "warehouse-manager")
	v.SetDefault("MQTT_QOS", 1)

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)

	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	v.SetDefault("CORS_MAX_AGE", 12*3600)

	v.SetDefault("METRICS_ENABLED", true)
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database configuration is missing: set DB_HOST and DB_NAME"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT secret is missing: set JWT_SECRET"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive"))
	}
	if c.JWT.RefreshTTL > 0 && c.JWT.RefreshTTL < c.JWT.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must not be shorter than JWT_ACCESS_TTL"))
	}
	if c.Reset.MaxAge <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_MAX_AGE must be positive"))
	}
	switch c.Password.Algorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("unknown PASSWORD_HASH_ALGORITHM %q", c.Password.Algorithm))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ResetURL builds the frontend link a reset token is delivered in.
func (c *Config) ResetURL() string {
	return c.Server.FrontendURL + "/" + c.Server.ResetPath
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
