package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/marketplace/internal/log"
)

type Application struct {
	Env       string        `mapstructure:"env"        json:"env"`
	Host      string        `mapstructure:"host"       json:"host"`
	SecretKey string        `mapstructure:"secret_key" json:"-"`
	TimeZone  string        `mapstructure:"timezone"   json:"timezone"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"  json:"token_ttl"`
	Port      int           `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

func (d Database) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&timezone=%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.TimeZone,
	)
}

type Cache struct {
	Host     string        `mapstructure:"host"     json:"host"`
	Password string        `mapstructure:"password" json:"-"`
	TTL      time.Duration `mapstructure:"ttl"      json:"ttl"`
	Database int           `mapstructure:"database" json:"database"`
	Port     uint16        `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

type Mail struct {
	Host     string        `mapstructure:"host"     json:"host"`
	Username string        `mapstructure:"username" json:"username"`
	Password string        `mapstructure:"password" json:"-"`
	From     string        `mapstructure:"from"     json:"from"`
	Timeout  time.Duration `mapstructure:"timeout"  json:"timeout"`
	Port     int           `mapstructure:"port"     json:"port"`
	TLS      bool          `mapstructure:"tls"      json:"tls"`
}

type PasswordReset struct {
	LinkBaseURL string        `mapstructure:"link_base_url" json:"link_base_url"`
	TTL         time.Duration `mapstructure:"ttl"           json:"ttl"`
}

type Config struct {
	Database      `mapstructure:"db"             json:"db"`
	Cache         `mapstructure:"cache"          json:"cache"`
	Application   `mapstructure:"application"    json:"application"`
	Otel          `mapstructure:"otel"           json:"otel"`
	Mail          `mapstructure:"mail"           json:"mail"`
	PasswordReset `mapstructure:"password_reset" json:"password_reset"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults() {
	viper.SetDefault("application.env", "development")
	viper.SetDefault("application.host", "0.0.0.0")
	viper.SetDefault("application.port", 8080)
	viper.SetDefault("application.timezone", "Local")
	viper.SetDefault("application.token_ttl", 30*time.Minute)
	viper.SetDefault("db.migration_path", "file://migrations")
	viper.SetDefault("db.timezone", "UTC")
	viper.SetDefault("db.max_connections", 10)
	viper.SetDefault("db.min_connections", 2)
	viper.SetDefault("cache.ttl", 15*time.Minute)
	viper.SetDefault("mail.timeout", 10*time.Second)
	viper.SetDefault("password_reset.link_base_url", "http://localhost:3000/reset-password")
	viper.SetDefault("password_reset.ttl", time.Hour)
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		viper.SetConfigName(filename)
		viper.AddConfigPath("./env")
		viper.SetConfigType("yaml")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()
		setDefaults()

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := viper.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = viper.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}

func (a Application) Location() *time.Location {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
