package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	DatabaseDriver       string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN          string        `mapstructure:"DATABASE_DSN"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	LogFormat            string        `mapstructure:"LOG_FORMAT"`
	HotelTimezone        string        `mapstructure:"HOTEL_TIMEZONE"`
	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	FrontendURL          string        `mapstructure:"FRONTEND_URL"`
	OAuthClientID        string        `mapstructure:"OAUTH_CLIENT_ID"`
	OAuthClientSecret    string        `mapstructure:"OAUTH_CLIENT_SECRET"`
	OAuthRedirectURL     string        `mapstructure:"OAUTH_REDIRECT_URL"`
	OAuthAuthURL         string        `mapstructure:"OAUTH_AUTH_URL"`
	OAuthTokenURL        string        `mapstructure:"OAUTH_TOKEN_URL"`
	OAuthUserInfoURL     string        `mapstructure:"OAUTH_USERINFO_URL"`
	EnableCORS           bool          `mapstructure:"ENABLE_CORS"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int           `mapstructure:"REDIS_DB"`
	AvailabilityCacheTTL time.Duration `mapstructure:"AVAILABILITY_CACHE_TTL"`
	AMQPURL              string        `mapstructure:"AMQP_URL"`
	AMQPQueue            string        `mapstructure:"AMQP_QUEUE"`
	DiscordBotToken      string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID     string        `mapstructure:"DISCORD_CHANNEL_ID"`
	SeedDefaults         bool          `mapstructure:"SEED_DEFAULTS"`
	BootstrapAdminEmail  string        `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`
}

func LoadConfig() *Config {
	// .env is optional; real environment variables still win.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	for _, key := range []string{
		"JWT_SECRET",
		"OAUTH_CLIENT_ID",
		"OAUTH_CLIENT_SECRET",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"AMQP_URL",
		"DISCORD_BOT_TOKEN",
		"DISCORD_CHANNEL_ID",
		"BOOTSTRAP_ADMIN_EMAIL",
	} {
		v.BindEnv(key)
	}

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	config.CORSOrigins = splitList(config.CORSOrigins)

	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "hotel.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("HOTEL_TIMEZONE", "Local")
	v.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000")
	v.SetDefault("OAUTH_REDIRECT_URL", "http://127.0.0.1:8080/auth/callback")
	v.SetDefault("OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/auth")
	v.SetDefault("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	v.SetDefault("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo")
	v.SetDefault("ENABLE_CORS", false)
	v.SetDefault("CORS_ORIGINS", []string{"*"})
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "30s")
	v.SetDefault("AMQP_QUEUE", "hotel.booking.events")
	v.SetDefault("SEED_DEFAULTS", true)
}

// splitList accepts both a real list and a single comma separated value,
// which is what an environment variable produces.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Location is the hotel's local time zone. "Today" for check-in purposes is
// evaluated in it.
func (c *Config) Location() (*time.Location, error) {
	if c.HotelTimezone == "" || strings.EqualFold(c.HotelTimezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.HotelTimezone)
	if err != nil {
		return nil, fmt.Errorf("load HOTEL_TIMEZONE %q: %w", c.HotelTimezone, err)
	}
	return loc, nil
}
